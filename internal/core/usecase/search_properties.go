package usecase

import (
	"context"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type SearchPropertiesUseCase struct {
	storage port.PropertyStoragePort
}

func NewSearchPropertiesUseCase(storage port.PropertyStoragePort) *SearchPropertiesUseCase {
	return &SearchPropertiesUseCase{storage: storage}
}

func (uc *SearchPropertiesUseCase) Execute(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "SearchProperties",
		"city":          criteria.City,
		"property_type": criteria.PropertyType,
		"listing_type":  criteria.ListingType,
	})

	ucLogger.Info("Use case started", nil)

	if criteria.PriceMin != nil && criteria.PriceMax != nil && *criteria.PriceMin > *criteria.PriceMax {
		return nil, domain.NewValidationError("price", "min price is greater than max price")
	}

	properties, err := uc.storage.Search(ctx, criteria)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(properties)})
	return properties, nil
}

// BrowsePropertiesUseCase - выдача страниц Buy/Rent: кандидаты из хранилища
// (только active) + фильтрация и сортировка в памяти.
type BrowsePropertiesUseCase struct {
	storage port.PropertyStoragePort
}

func NewBrowsePropertiesUseCase(storage port.PropertyStoragePort) *BrowsePropertiesUseCase {
	return &BrowsePropertiesUseCase{storage: storage}
}

func (uc *BrowsePropertiesUseCase) Execute(ctx context.Context, filters domain.BrowseFilters) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "BrowseProperties",
		"sort":     string(filters.Sort),
	})

	ucLogger.Info("Use case started", nil)

	if filters.PriceMin != nil && filters.PriceMax != nil && *filters.PriceMin > *filters.PriceMax {
		return nil, domain.NewValidationError("price", "min price is greater than max price")
	}

	// Числовые условия совпадают по смыслу с конвейером, их можно отдать хранилищу.
	// Строковые сравнения остаются конвейеру (case folding).
	candidates, err := uc.storage.Search(ctx, domain.SearchCriteria{
		PriceMin: filters.PriceMin,
		PriceMax: filters.PriceMax,
		Bedrooms: filters.Bedrooms,
	})
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	result := domain.ApplyBrowseFilters(candidates, filters)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"candidates": len(candidates),
		"count":      len(result),
	})
	return result, nil
}
