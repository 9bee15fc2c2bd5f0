package usecase

import (
	"context"
	"fmt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type RecordLeadUseCase struct {
	storage   port.PropertyStoragePort
	publisher port.PropertyEventPublisherPort
}

func NewRecordLeadUseCase(storage port.PropertyStoragePort, publisher port.PropertyEventPublisherPort) *RecordLeadUseCase {
	return &RecordLeadUseCase{storage: storage, publisher: publisher}
}

// Execute засчитывает обращение покупателя в пределах лимита тарифа.
func (uc *RecordLeadUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "RecordLead",
		"property_id": id.String(),
	})

	ucLogger.Info("Use case started", nil)

	property, err := uc.storage.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}
	// Неактивное объявление для покупателя не существует
	if !property.IsActive() {
		return nil, fmt.Errorf("property %s is %s: %w", id, property.Status, domain.ErrNotFound)
	}

	plan := domain.PlanFor(property.PlanType)
	updated, err := uc.storage.IncrementLeads(ctx, id, plan.MaxLeads)
	if err != nil {
		ucLogger.Warn("Lead was not recorded", port.Fields{"error": err.Error(), "plan": string(plan.Type)})
		return nil, err
	}

	publishEvent(ctx, uc.publisher, ucLogger, domain.EventLeadRecorded, updated)

	ucLogger.Info("Use case finished successfully", port.Fields{"leads": updated.Leads})
	return updated, nil
}
