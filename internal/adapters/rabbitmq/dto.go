package rabbitmq

import (
	"time"

	"listing-service/internal/core/domain"
)

// ImportListingDTO - тело сообщения очереди listing_import
type ImportListingDTO struct {
	UserID       string     `json:"user_id"`
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
	PlanType     string     `json:"plan_type"`
	Status       string     `json:"status"`
	IsVerified   bool       `json:"is_verified"`
	IsFeatured   bool       `json:"is_featured"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func (d ImportListingDTO) toDraft() domain.PropertyDraft {
	return domain.PropertyDraft{
		UserID:       d.UserID,
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: domain.PropertyType(d.PropertyType),
		ListingType:  domain.ListingType(d.ListingType),
		City:         d.City,
		Locality:     d.Locality,
		Address:      d.Address,
		Price:        d.Price,
		Area:         d.Area,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Amenities:    d.Amenities,
		Images:       d.Images,
		Videos:       d.Videos,
		FloorPlan:    d.FloorPlan,
		PlanType:     domain.PlanType(d.PlanType),
		Status:       domain.Status(d.Status),
		IsVerified:   d.IsVerified,
		IsFeatured:   d.IsFeatured,
		ExpiresAt:    d.ExpiresAt,
	}
}

// PropertyEventDTO - тело событий жизненного цикла в listings_exchange
type PropertyEventDTO struct {
	EventType  string    `json:"event_type"`
	PropertyID string    `json:"property_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	Leads      int       `json:"leads"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toEventDTO(e domain.PropertyEvent) PropertyEventDTO {
	return PropertyEventDTO{
		EventType:  string(e.Type),
		PropertyID: e.PropertyID.String(),
		UserID:     e.UserID,
		Status:     string(e.Status),
		Leads:      e.Leads,
		OccurredAt: e.OccurredAt.UTC(),
	}
}
