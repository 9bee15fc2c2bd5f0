package usecase

import (
	"context"
	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type ListActivePropertiesUseCase struct {
	storage      port.PropertyStoragePort
	defaultLimit int
}

func NewListActivePropertiesUseCase(storage port.PropertyStoragePort, defaultLimit int) *ListActivePropertiesUseCase {
	if defaultLimit <= 0 || defaultLimit > constants.MaxListLimit {
		defaultLimit = constants.DefaultListLimit
	}
	return &ListActivePropertiesUseCase{storage: storage, defaultLimit: defaultLimit}
}

func (uc *ListActivePropertiesUseCase) Execute(ctx context.Context, limit int) ([]domain.Property, error) {
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > constants.MaxListLimit {
		limit = constants.MaxListLimit
	}

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListActiveProperties",
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	properties, err := uc.storage.ListActive(ctx, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(properties)})
	return properties, nil
}

type ListOwnerPropertiesUseCase struct {
	storage port.PropertyStoragePort
}

func NewListOwnerPropertiesUseCase(storage port.PropertyStoragePort) *ListOwnerPropertiesUseCase {
	return &ListOwnerPropertiesUseCase{storage: storage}
}

func (uc *ListOwnerPropertiesUseCase) Execute(ctx context.Context, ownerID string) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListOwnerProperties",
		"user_id":  ownerID,
	})

	ucLogger.Info("Use case started", nil)

	if ownerID == "" {
		return nil, domain.NewValidationError("user_id", "is required")
	}

	properties, err := uc.storage.ListByOwner(ctx, ownerID)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(properties)})
	return properties, nil
}
