package filestore

import (
	"listing-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// propertyRecord - строка в файле, поля совпадают с контрактом удаленной таблицы
type propertyRecord struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`

	Title        string  `json:"title"`
	Description  *string `json:"description"`
	PropertyType string  `json:"property_type"`
	ListingType  string  `json:"listing_type"`

	City     string  `json:"city"`
	Locality string  `json:"locality"`
	Address  *string `json:"address"`

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

func toRecord(p domain.Property) propertyRecord {
	return propertyRecord{
		ID:           p.ID,
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
		Amenities:    nonNil(p.Amenities),
		Images:       nonNil(p.Images),
		Videos:       nonNil(p.Videos),
		FloorPlan:    p.FloorPlan,
		PlanType:     string(p.PlanType),
		Status:       string(p.Status),
		Views:        p.Views,
		Leads:        p.Leads,
		IsVerified:   p.IsVerified,
		IsFeatured:   p.IsFeatured,
	}
}

func (r propertyRecord) toDomain() domain.Property {
	return domain.Property{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ExpiresAt:    r.ExpiresAt,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  r.Description,
		PropertyType: domain.PropertyType(r.PropertyType),
		ListingType:  domain.ListingType(r.ListingType),
		City:         r.City,
		Locality:     r.Locality,
		Address:      r.Address,
		Price:        r.Price,
		Area:         r.Area,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Amenities:    nonNil(r.Amenities),
		Images:       nonNil(r.Images),
		Videos:       nonNil(r.Videos),
		FloorPlan:    r.FloorPlan,
		PlanType:     domain.PlanType(r.PlanType),
		Status:       domain.Status(r.Status),
		Views:        r.Views,
		Leads:        r.Leads,
		IsVerified:   r.IsVerified,
		IsFeatured:   r.IsFeatured,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
