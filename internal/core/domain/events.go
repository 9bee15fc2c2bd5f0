package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPropertyCreated EventType = "property.created"
	EventPropertyUpdated EventType = "property.updated"
	EventPropertyDeleted EventType = "property.deleted"
	EventLeadRecorded    EventType = "property.lead"
)

// PropertyEvent - событие жизненного цикла объявления для других сервисов
type PropertyEvent struct {
	Type       EventType
	PropertyID uuid.UUID
	UserID     string
	Status     Status
	Leads      int
	OccurredAt time.Time
}

func NewPropertyEvent(t EventType, p *Property, at time.Time) PropertyEvent {
	return PropertyEvent{
		Type:       t,
		PropertyID: p.ID,
		UserID:     p.UserID,
		Status:     p.Status,
		Leads:      p.Leads,
		OccurredAt: at.UTC(),
	}
}
