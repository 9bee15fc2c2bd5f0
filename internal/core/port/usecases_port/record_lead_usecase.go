package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"

	"github.com/google/uuid"
)

type RecordLeadUseCase interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}
