package usecase

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"time"
)

type ExpireListingsUseCase struct {
	storage port.PropertyStoragePort
}

func NewExpireListingsUseCase(storage port.PropertyStoragePort) *ExpireListingsUseCase {
	return &ExpireListingsUseCase{storage: storage}
}

// Execute переводит в inactive активные объявления с истекшим сроком размещения.
func (uc *ExpireListingsUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ExpireListings",
		"now":      now.UTC().Format(time.RFC3339),
	})

	ucLogger.Info("Use case started", nil)

	expired, err := uc.storage.ExpireListings(ctx, now)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return 0, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"expired": expired})
	return expired, nil
}
