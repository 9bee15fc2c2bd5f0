package usecase

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type DeletePropertyUseCase struct {
	storage   port.PropertyStoragePort
	publisher port.PropertyEventPublisherPort
}

func NewDeletePropertyUseCase(storage port.PropertyStoragePort, publisher port.PropertyEventPublisherPort) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{storage: storage, publisher: publisher}
}

func (uc *DeletePropertyUseCase) Execute(ctx context.Context, callerID string, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "DeleteProperty",
		"user_id":     callerID,
		"property_id": id.String(),
	})

	ucLogger.Info("Use case started", nil)

	existing, err := loadOwned(ctx, uc.storage, callerID, id)
	if err != nil {
		ucLogger.Warn("Ownership check failed", port.Fields{"error": err.Error()})
		return err
	}

	if err := uc.storage.Delete(ctx, id); err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return err
	}

	publishEvent(ctx, uc.publisher, ucLogger, domain.EventPropertyDeleted, existing)

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
