package rest

import (
	"net/http"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
)

type CalculatorHandler struct {
	emiUC   usecases_port.CalculateEMIUseCase
	plansUC usecases_port.GetPlansUseCase
}

func NewCalculatorHandler(emiUC usecases_port.CalculateEMIUseCase, plansUC usecases_port.GetPlansUseCase) *CalculatorHandler {
	return &CalculatorHandler{emiUC: emiUC, plansUC: plansUC}
}

// EMI обрабатывает GET /api/v1/emi?principal=&rate=&years=
// Вырожденные значения дают 0, а не ошибку; ошибка - только нечисловой ввод.
func (h *CalculatorHandler) EMI(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "EMI")

	var values [3]float64
	var fields []domain.FieldError
	for i, name := range []string{"principal", "rate", "years"} {
		v, err := queryFloat(r, name)
		switch {
		case err != nil:
			fields = append(fields, domain.FieldError{Field: name, Reason: "must be a number"})
		case v == nil:
			fields = append(fields, domain.FieldError{Field: name, Reason: "is required"})
		default:
			values[i] = *v
		}
	}
	if len(fields) > 0 {
		writeDomainError(w, logger, &domain.ValidationError{Fields: fields})
		return
	}

	b := h.emiUC.Execute(r.Context(), values[0], values[1], values[2])
	RespondWithJSON(w, http.StatusOK, EMIResponse{
		Principal:      values[0],
		Rate:           values[1],
		Years:          values[2],
		MonthlyPayment: b.MonthlyPayment,
		Months:         b.Months,
		TotalPayment:   b.TotalPayment,
		TotalInterest:  b.TotalInterest,
	})
}

// Plans обрабатывает GET /api/v1/plans
func (h *CalculatorHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans := h.plansUC.Execute(r.Context())
	resp := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

type HealthHandler struct {
	checker port.HealthCheckerPort
}

func NewHealthHandler(checker port.HealthCheckerPort) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Healthz - живость процесса плюс доступность хранилища
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.Ping(r.Context()); err != nil {
			handlerLogger(r, "Healthz").Warn("Store ping failed", port.Fields{"error": err.Error()})
			RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
