package rest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// writeDomainError переводит ошибки ядра в HTTP-статусы
func writeDomainError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := ValidationErrorResponse{Error: domain.ErrValidation.Error()}
		for _, f := range verr.Fields {
			resp.Fields = append(resp.Fields, FieldErrorResponse{Field: f.Field, Reason: f.Reason})
		}
		RespondWithJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "Property not found")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, "You are not the owner of this listing")
	case errors.Is(err, domain.ErrLeadLimitReached):
		WriteJSONError(w, http.StatusConflict, "Lead limit reached for this listing's plan")
	case errors.Is(err, domain.ErrTokenInvalid):
		WriteJSONError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, domain.ErrStoreUnavailable):
		logger.Error("Store unavailable", err, nil)
		WriteJSONError(w, http.StatusServiceUnavailable, "Property store is unavailable, try again later")
	default:
		logger.Error("Unexpected error", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryFloat разбирает необязательный числовой параметр
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	// NaN и Inf не сериализуются в JSON, отсекаем их здесь
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.NewValidationError(name, "must be a number")
	}
	return &v, nil
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an integer")
	}
	return &v, nil
}

// queryList принимает и повторяющийся параметр, и значения через запятую
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
