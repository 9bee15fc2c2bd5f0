package usecase

import (
	"context"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"time"
)

// publishEvent отправляет событие, не влияя на результат основной операции
func publishEvent(ctx context.Context, publisher port.PropertyEventPublisherPort, logger port.LoggerPort, t domain.EventType, p *domain.Property) {
	if publisher == nil || p == nil {
		return
	}
	event := domain.NewPropertyEvent(t, p, time.Now())
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish property event, continuing", port.Fields{
			"event_type":  string(t),
			"property_id": p.ID.String(),
			"error":       err.Error(),
		})
	}
}
