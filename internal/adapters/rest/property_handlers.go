package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// PropertyUseCases - набор use case'ов, которые обслуживает PropertyHandler
type PropertyUseCases struct {
	Create usecases_port.CreatePropertyUseCase
	Get    usecases_port.GetPropertyUseCase
	List   usecases_port.ListActivePropertiesUseCase
	Owner  usecases_port.ListOwnerPropertiesUseCase
	Update usecases_port.UpdatePropertyUseCase
	Delete usecases_port.DeletePropertyUseCase
	Search usecases_port.SearchPropertiesUseCase
	Browse usecases_port.BrowsePropertiesUseCase
	Lead   usecases_port.RecordLeadUseCase
}

type PropertyHandler struct {
	uc PropertyUseCases
}

func NewPropertyHandler(uc PropertyUseCases) *PropertyHandler {
	return &PropertyHandler{uc: uc}
}

func handlerLogger(r *http.Request, name string) port.LoggerPort {
	return contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": name})
}

func propertyIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

// ListActive обрабатывает GET /api/v1/properties
func (h *PropertyHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "ListActive")

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	n := 0 // use case подставит значение по умолчанию
	if limit != nil {
		n = *limit
	}

	properties, err := h.uc.List.Execute(r.Context(), n)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toObjectsResponse(properties))
}

// Search обрабатывает GET /api/v1/properties/search
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "Search")
	q := r.URL.Query()

	criteria := domain.SearchCriteria{
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		ListingType:  q.Get("listingType"),
	}
	var err error
	if criteria.PriceMin, err = queryFloat(r, "minPrice"); err != nil {
		writeDomainError(w, logger, err)
		return
	}
	if criteria.PriceMax, err = queryFloat(r, "maxPrice"); err != nil {
		writeDomainError(w, logger, err)
		return
	}
	if criteria.Bedrooms, err = queryInt(r, "bedrooms"); err != nil {
		writeDomainError(w, logger, err)
		return
	}

	properties, err := h.uc.Search.Execute(r.Context(), criteria)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toObjectsResponse(properties))
}

// Browse обрабатывает GET /api/v1/properties/browse (страницы Buy/Rent)
func (h *PropertyHandler) Browse(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "Browse")
	q := r.URL.Query()

	sortKey, ok := domain.ParseSortKey(q.Get("sort"))
	if !ok {
		writeDomainError(w, logger, domain.NewValidationError("sort", "unknown sort key"))
		return
	}

	filters := domain.BrowseFilters{
		Query:        q.Get("q"),
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		ListingType:  q.Get("listingType"),
		Amenities:    queryList(r, "amenities"),
		Sort:         sortKey,
	}
	var err error
	if filters.Bedrooms, err = queryInt(r, "bedrooms"); err != nil {
		writeDomainError(w, logger, err)
		return
	}
	if filters.PriceMin, err = queryFloat(r, "priceMin"); err != nil {
		writeDomainError(w, logger, err)
		return
	}
	if filters.PriceMax, err = queryFloat(r, "priceMax"); err != nil {
		writeDomainError(w, logger, err)
		return
	}

	properties, err := h.uc.Browse.Execute(r.Context(), filters)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toObjectsResponse(properties))
}

// GetByID обрабатывает GET /api/v1/properties/{propertyID}
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "GetByID")

	id, err := propertyIDFromURL(r)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	property, err := h.uc.Get.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

// RecordLead обрабатывает POST /api/v1/properties/{propertyID}/leads
func (h *PropertyHandler) RecordLead(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "RecordLead")

	id, err := propertyIDFromURL(r)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	property, err := h.uc.Lead.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, LeadResponse{PropertyID: property.ID.String(), Leads: property.Leads})
}

// Create обрабатывает POST /api/v1/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "Create")

	caller, ok := callerFromContext(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Missing user in context")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// Сначала контракт, потом декодирование: так клиент получает список полей
	if err := contracts.ValidateMessage(contracts.PropertyCreate, contracts.Version1, body); err != nil {
		logger.Warn("Create payload failed schema validation", port.Fields{"error": err.Error()})
		writeDomainError(w, logger, err)
		return
	}

	var req CreatePropertyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.uc.Create.Execute(r.Context(), req.toDraft(caller.UserID))
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/properties/"+created.ID.String())
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*created))
}

// Update обрабатывает PATCH /api/v1/properties/{propertyID}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "Update")

	caller, ok := callerFromContext(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Missing user in context")
		return
	}
	id, err := propertyIDFromURL(r)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// id, user_id, created_at и счетчики не редактируются: такие поля - ошибка клиента
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var req UpdatePropertyRequest
	if err := dec.Decode(&req); err != nil {
		logger.Warn("Failed to decode update body", port.Fields{"error": err.Error()})
		writeDomainError(w, logger, domain.NewValidationError("body", err.Error()))
		return
	}

	updated, err := h.uc.Update.Execute(r.Context(), *caller, id, req.toPatch())
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*updated))
}

// Delete обрабатывает DELETE /api/v1/properties/{propertyID}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "Delete")

	caller, ok := callerFromContext(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Missing user in context")
		return
	}
	id, err := propertyIDFromURL(r)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	if err := h.uc.Delete.Execute(r.Context(), caller.UserID, id); err != nil {
		writeDomainError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine обрабатывает GET /api/v1/me/properties
func (h *PropertyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r, "ListMine")

	caller, ok := callerFromContext(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Missing user in context")
		return
	}

	properties, err := h.uc.Owner.Execute(r.Context(), caller.UserID)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toObjectsResponse(properties))
}
