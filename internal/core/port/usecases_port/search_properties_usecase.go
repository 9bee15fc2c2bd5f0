package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type SearchPropertiesUseCase interface {
	Execute(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Property, error)
}

type BrowsePropertiesUseCase interface {
	Execute(ctx context.Context, filters domain.BrowseFilters) ([]domain.Property, error)
}
