package rest

import (
	"time"

	"listing-service/internal/core/domain"
)

// ErrorResponse - стандартная структура для ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

type FieldErrorResponse struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationErrorResponse struct {
	Error  string               `json:"error"`
	Fields []FieldErrorResponse `json:"fields"`
}

// PropertyResponse повторяет контракт строки таблицы properties
type PropertyResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`

	Title        string  `json:"title"`
	Description  *string `json:"description"`
	PropertyType string  `json:"property_type"`
	ListingType  string  `json:"listing_type"`
	City         string  `json:"city"`
	Locality     string  `json:"locality"`
	Address      *string `json:"address"`

	Price     float64 `json:"price"`
	Area      float64 `json:"area"`
	Bedrooms  *int    `json:"bedrooms"`
	Bathrooms *int    `json:"bathrooms"`

	Amenities []string `json:"amenities"`
	Images    []string `json:"images"`
	Videos    []string `json:"videos"`
	FloorPlan *string  `json:"floor_plan"`

	PlanType   string `json:"plan_type"`
	Status     string `json:"status"`
	Views      int    `json:"views"`
	Leads      int    `json:"leads"`
	IsVerified bool   `json:"is_verified"`
	IsFeatured bool   `json:"is_featured"`
}

// ObjectsResponse - ответ со списком; пустой список отдается как [], не null
type ObjectsResponse struct {
	Objects []PropertyResponse `json:"objects"`
	Count   int                `json:"count"`
}

// CreatePropertyRequest - тело POST /properties; user_id берется из токена.
// Тариф, верификация, продвижение и срок назначаются оператором через PATCH.
type CreatePropertyRequest struct {
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	PropertyType string     `json:"property_type"`
	ListingType  string     `json:"listing_type"`
	City         string     `json:"city"`
	Locality     string     `json:"locality"`
	Address      *string    `json:"address"`
	Price        *float64   `json:"price"`
	Area         *float64   `json:"area"`
	Bedrooms     *int       `json:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms"`
	Amenities    []string   `json:"amenities"`
	Images       []string   `json:"images"`
	Videos       []string   `json:"videos"`
	FloorPlan    *string    `json:"floor_plan"`
	Status       string     `json:"status"`
}

// UpdatePropertyRequest - тело PATCH; отсутствующее поле не меняется,
// null в nullable-поле очищает его
type UpdatePropertyRequest struct {
	Title        *string                 `json:"title"`
	Description  domain.Optional[string] `json:"description"`
	PropertyType *string                 `json:"property_type"`
	ListingType  *string                 `json:"listing_type"`
	City         *string                 `json:"city"`
	Locality     *string                 `json:"locality"`
	Address      domain.Optional[string] `json:"address"`
	Price        *float64                `json:"price"`
	Area         *float64                `json:"area"`
	Bedrooms     domain.Optional[int]    `json:"bedrooms"`
	Bathrooms    domain.Optional[int]    `json:"bathrooms"`
	Amenities    *[]string               `json:"amenities"`
	Images       *[]string               `json:"images"`
	Videos       *[]string               `json:"videos"`
	FloorPlan    domain.Optional[string] `json:"floor_plan"`
	PlanType     *string                 `json:"plan_type"`
	Status       *string                 `json:"status"`
	IsVerified   *bool                   `json:"is_verified"`
	IsFeatured   *bool                   `json:"is_featured"`
	ExpiresAt    *time.Time              `json:"expires_at"`
}

type EMIResponse struct {
	Principal      float64 `json:"principal"`
	Rate           float64 `json:"rate"`
	Years          float64 `json:"years"`
	MonthlyPayment float64 `json:"monthly_payment"`
	Months         int     `json:"months"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

type PlanResponse struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	ValidityDays int    `json:"validity_days"`
	MaxPhotos    int    `json:"max_photos"`
	MaxLeads     int    `json:"max_leads"`
	Price        string `json:"price"`
}

type LeadResponse struct {
	PropertyID string `json:"property_id"`
	Leads      int    `json:"leads"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:           p.ID.String(),
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
		ExpiresAt:    p.ExpiresAt.UTC(),
		UserID:       p.UserID,
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: string(p.PropertyType),
		ListingType:  string(p.ListingType),
		City:         p.City,
		Locality:     p.Locality,
		Address:      p.Address,
		Price:        p.Price,
		Area:         p.Area,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Amenities:    emptyIfNil(p.Amenities),
		Images:       emptyIfNil(p.Images),
		Videos:       emptyIfNil(p.Videos),
		FloorPlan:    p.FloorPlan,
		PlanType:     string(p.PlanType),
		Status:       string(p.Status),
		Views:        p.Views,
		Leads:        p.Leads,
		IsVerified:   p.IsVerified,
		IsFeatured:   p.IsFeatured,
	}
}

func toObjectsResponse(properties []domain.Property) ObjectsResponse {
	resp := ObjectsResponse{Objects: make([]PropertyResponse, 0, len(properties)), Count: len(properties)}
	for _, p := range properties {
		resp.Objects = append(resp.Objects, toPropertyResponse(p))
	}
	return resp
}

func (req CreatePropertyRequest) toDraft(userID string) domain.PropertyDraft {
	return domain.PropertyDraft{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: domain.PropertyType(req.PropertyType),
		ListingType:  domain.ListingType(req.ListingType),
		City:         req.City,
		Locality:     req.Locality,
		Address:      req.Address,
		Price:        req.Price,
		Area:         req.Area,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Amenities:    req.Amenities,
		Images:       req.Images,
		Videos:       req.Videos,
		FloorPlan:    req.FloorPlan,
		Status:       domain.Status(req.Status),
	}
}

func (req UpdatePropertyRequest) toPatch() domain.PropertyPatch {
	patch := domain.PropertyPatch{
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		Locality:    req.Locality,
		Address:     req.Address,
		Price:       req.Price,
		Area:        req.Area,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Amenities:   req.Amenities,
		Images:      req.Images,
		Videos:      req.Videos,
		FloorPlan:   req.FloorPlan,
		IsVerified:  req.IsVerified,
		IsFeatured:  req.IsFeatured,
		ExpiresAt:   req.ExpiresAt,
	}
	if req.PropertyType != nil {
		v := domain.PropertyType(*req.PropertyType)
		patch.PropertyType = &v
	}
	if req.ListingType != nil {
		v := domain.ListingType(*req.ListingType)
		patch.ListingType = &v
	}
	if req.PlanType != nil {
		v := domain.PlanType(*req.PlanType)
		patch.PlanType = &v
	}
	if req.Status != nil {
		v := domain.Status(*req.Status)
		patch.Status = &v
	}
	return patch
}

func toPlanResponse(p domain.Plan) PlanResponse {
	return PlanResponse{
		Type:         string(p.Type),
		Name:         p.Name,
		ValidityDays: int(p.Validity / (24 * time.Hour)),
		MaxPhotos:    p.MaxPhotos,
		MaxLeads:     p.MaxLeads,
		Price:        p.PriceDisplay,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
