package usecase

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type CreatePropertyUseCase struct {
	storage   port.PropertyStoragePort
	publisher port.PropertyEventPublisherPort
}

func NewCreatePropertyUseCase(storage port.PropertyStoragePort, publisher port.PropertyEventPublisherPort) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{storage: storage, publisher: publisher}
}

func (uc *CreatePropertyUseCase) Execute(ctx context.Context, draft domain.PropertyDraft) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CreateProperty",
		"user_id":  draft.UserID,
	})

	ucLogger.Info("Use case started", nil)

	created, err := uc.storage.Create(ctx, draft)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	publishEvent(ctx, uc.publisher, ucLogger, domain.EventPropertyCreated, created)

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": created.ID.String()})
	return created, nil
}
