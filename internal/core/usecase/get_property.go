package usecase

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
)

type GetPropertyUseCase struct {
	storage port.PropertyStoragePort
}

func NewGetPropertyUseCase(storage port.PropertyStoragePort) *GetPropertyUseCase {
	return &GetPropertyUseCase{storage: storage}
}

// Execute возвращает объявление и засчитывает просмотр.
// Ошибка счетчика только логируется.
func (uc *GetPropertyUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetProperty",
		"property_id": id.String(),
	})

	ucLogger.Info("Use case started", nil)

	property, err := uc.storage.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	if err := uc.storage.IncrementViews(ctx, id); err != nil {
		ucLogger.Warn("Failed to increment views, continuing", port.Fields{"error": err.Error()})
	} else {
		property.Views++
	}

	ucLogger.Info("Use case finished successfully", nil)
	return property, nil
}
