package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type CalculateEMIUseCase interface {
	Execute(ctx context.Context, principal, annualRatePercent, years float64) domain.EMIBreakdown
}

type GetPlansUseCase interface {
	Execute(ctx context.Context) []domain.Plan
}
