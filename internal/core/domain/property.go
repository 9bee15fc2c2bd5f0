package domain

import (
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeStudio     PropertyType = "studio"
	PropertyTypePenthouse  PropertyType = "penthouse"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypePlot       PropertyType = "plot"
)

type ListingType string

const (
	ListingTypeSell ListingType = "sell"
	ListingTypeRent ListingType = "rent"
)

type PlanType string

const (
	PlanFree     PlanType = "free"
	PlanBasic    PlanType = "basic"
	PlanPremium  PlanType = "premium"
	PlanAssisted PlanType = "assisted"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusSold     Status = "sold"
	StatusRented   Status = "rented"
)

// Property - объявление о продаже или аренде. Единственная сущность сервиса.
type Property struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
	UserID    string

	Title        string       `validate:"required"`
	Description  *string
	PropertyType PropertyType `validate:"required,oneof=apartment villa house studio penthouse commercial plot"`
	ListingType  ListingType  `validate:"required,oneof=sell rent"`

	City     string `validate:"required"`
	Locality string `validate:"required"`
	Address  *string

	Price     float64 `validate:"gte=0"`
	Area      float64 `validate:"gte=0"`
	Bedrooms  *int    `validate:"omitempty,gte=0"`
	Bathrooms *int    `validate:"omitempty,gte=0"`

	Amenities []string
	Images    []string // порядок важен: первое изображение - обложка
	Videos    []string
	FloorPlan *string

	PlanType   PlanType `validate:"required,oneof=free basic premium assisted"`
	Status     Status   `validate:"required,oneof=active inactive sold rented"`
	Views      int      `validate:"gte=0"`
	Leads      int      `validate:"gte=0"`
	IsVerified bool
	IsFeatured bool
}

// IsActive - виден ли объект в публичной выдаче
func (p *Property) IsActive() bool {
	return p.Status == StatusActive
}

// Cover возвращает обложку объявления (первое изображение)
func (p *Property) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// PropertyDraft - данные для создания объявления. Указатели на price/area
// нужны, чтобы отличить "не передано" от нуля.
type PropertyDraft struct {
	UserID string `validate:"required"`

	Title        string       `validate:"required"`
	Description  *string
	PropertyType PropertyType `validate:"required,oneof=apartment villa house studio penthouse commercial plot"`
	ListingType  ListingType  `validate:"required,oneof=sell rent"`

	City     string `validate:"required"`
	Locality string `validate:"required"`
	Address  *string

	Price     *float64 `validate:"required,gte=0"`
	Area      *float64 `validate:"required,gte=0"`
	Bedrooms  *int     `validate:"omitempty,gte=0"`
	Bathrooms *int     `validate:"omitempty,gte=0"`

	Amenities []string
	Images    []string
	Videos    []string
	FloorPlan *string

	PlanType   PlanType `validate:"omitempty,oneof=free basic premium assisted"`
	Status     Status   `validate:"omitempty,oneof=active inactive sold rented"`
	IsVerified bool
	IsFeatured bool
	ExpiresAt  *time.Time
}

// PropertyPatch - частичное обновление. nil означает "не менять",
// nullable-поля строки задаются через Optional и могут быть очищены.
// id, user_id, created_at и счетчики сюда намеренно не входят.
type PropertyPatch struct {
	Title        *string
	Description  Optional[string]
	PropertyType *PropertyType
	ListingType  *ListingType
	City         *string
	Locality     *string
	Address      Optional[string]
	Price        *float64
	Area         *float64
	Bedrooms     Optional[int]
	Bathrooms    Optional[int]
	Amenities    *[]string
	Images       *[]string
	Videos       *[]string
	FloorPlan    Optional[string]
	Status       *Status

	// Поля тарифа и доверия меняет только оператор
	PlanType   *PlanType
	IsVerified *bool
	IsFeatured *bool
	ExpiresAt  *time.Time
}

// NewPropertyFromDraft собирает запись из черновика. ID и временные метки
// проставляет хранилище.
func NewPropertyFromDraft(d PropertyDraft, id uuid.UUID, now time.Time) Property {
	p := Property{
		ID:           id,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       d.UserID,
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: d.PropertyType,
		ListingType:  d.ListingType,
		City:         d.City,
		Locality:     d.Locality,
		Address:      d.Address,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Amenities:    cloneStrings(d.Amenities),
		Images:       cloneStrings(d.Images),
		Videos:       cloneStrings(d.Videos),
		FloorPlan:    d.FloorPlan,
		PlanType:     d.PlanType,
		Status:       d.Status,
		IsVerified:   d.IsVerified,
		IsFeatured:   d.IsFeatured,
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.Area != nil {
		p.Area = *d.Area
	}
	if p.PlanType == "" {
		p.PlanType = PlanFree
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if d.ExpiresAt != nil {
		p.ExpiresAt = d.ExpiresAt.UTC()
	} else {
		p.ExpiresAt = PlanFor(p.PlanType).ExpiresAt(now)
	}
	return p
}

// Apply накладывает patch на копию записи и возвращает результат.
func (p Property) Apply(patch PropertyPatch, now time.Time) Property {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	patch.Description.apply(&p.Description)
	if patch.PropertyType != nil {
		p.PropertyType = *patch.PropertyType
	}
	if patch.ListingType != nil {
		p.ListingType = *patch.ListingType
	}
	if patch.City != nil {
		p.City = *patch.City
	}
	if patch.Locality != nil {
		p.Locality = *patch.Locality
	}
	patch.Address.apply(&p.Address)
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	patch.Bedrooms.apply(&p.Bedrooms)
	patch.Bathrooms.apply(&p.Bathrooms)
	if patch.Amenities != nil {
		p.Amenities = cloneStrings(*patch.Amenities)
	}
	if patch.Images != nil {
		p.Images = cloneStrings(*patch.Images)
	}
	if patch.Videos != nil {
		p.Videos = cloneStrings(*patch.Videos)
	}
	patch.FloorPlan.apply(&p.FloorPlan)
	if patch.PlanType != nil {
		p.PlanType = *patch.PlanType
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsVerified != nil {
		p.IsVerified = *patch.IsVerified
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.ExpiresAt != nil {
		p.ExpiresAt = patch.ExpiresAt.UTC()
	}
	p.UpdatedAt = now
	return p
}

// IsEmpty - true, если patch ничего не меняет
func (patch PropertyPatch) IsEmpty() bool {
	return patch == PropertyPatch{}
}

// PrivilegedFields - поля patch, которые владелец менять не может
func (patch PropertyPatch) PrivilegedFields() []string {
	var fields []string
	if patch.PlanType != nil {
		fields = append(fields, "plan_type")
	}
	if patch.IsVerified != nil {
		fields = append(fields, "is_verified")
	}
	if patch.IsFeatured != nil {
		fields = append(fields, "is_featured")
	}
	if patch.ExpiresAt != nil {
		fields = append(fields, "expires_at")
	}
	return fields
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
