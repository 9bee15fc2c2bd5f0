package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type CreatePropertyUseCase interface {
	Execute(ctx context.Context, draft domain.PropertyDraft) (*domain.Property, error)
}
