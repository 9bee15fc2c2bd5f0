package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

type UpdatePropertyUseCase interface {
	Execute(ctx context.Context, caller domain.Claims, id uuid.UUID, patch domain.PropertyPatch) (*domain.Property, error)
}
