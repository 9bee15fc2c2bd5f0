package usecase

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type CalculateEMIUseCase struct{}

func NewCalculateEMIUseCase() *CalculateEMIUseCase {
	return &CalculateEMIUseCase{}
}

func (uc *CalculateEMIUseCase) Execute(ctx context.Context, principal, annualRatePercent, years float64) domain.EMIBreakdown {
	result := domain.CalculateEMIBreakdown(principal, annualRatePercent, years)

	contextkeys.LoggerFromContext(ctx).Debug("EMI calculated", port.Fields{
		"use_case":  "CalculateEMI",
		"principal": principal,
		"rate":      annualRatePercent,
		"years":     years,
		"emi":       result.MonthlyPayment,
	})
	return result
}

type GetPlansUseCase struct{}

func NewGetPlansUseCase() *GetPlansUseCase {
	return &GetPlansUseCase{}
}

func (uc *GetPlansUseCase) Execute(ctx context.Context) []domain.Plan {
	return domain.Plans()
}
