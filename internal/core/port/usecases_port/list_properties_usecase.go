package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type ListActivePropertiesUseCase interface {
	Execute(ctx context.Context, limit int) ([]domain.Property, error)
}

type ListOwnerPropertiesUseCase interface {
	Execute(ctx context.Context, ownerID string) ([]domain.Property, error)
}
