package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// SearchCriteria - фильтры поиска на стороне хранилища. Пустые поля не участвуют.
// Все заданные условия объединяются через AND, выдача - только active.
type SearchCriteria struct {
	City         string
	PropertyType string
	ListingType  string
	PriceMin     *float64
	PriceMax     *float64
	Bedrooms     *int
}

// Matches проверяет запись по критериям. Используется локальным хранилищем,
// postgres-адаптер строит эквивалентный WHERE.
func (c SearchCriteria) Matches(p *Property) bool {
	if !p.IsActive() {
		return false
	}
	if c.City != "" && !containsFold(p.City, c.City) {
		return false
	}
	if c.PropertyType != "" && string(p.PropertyType) != c.PropertyType {
		return false
	}
	if c.ListingType != "" && string(p.ListingType) != c.ListingType {
		return false
	}
	if c.PriceMin != nil && p.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && p.Price > *c.PriceMax {
		return false
	}
	if c.Bedrooms != nil && (p.Bedrooms == nil || *p.Bedrooms != *c.Bedrooms) {
		return false
	}
	return true
}

// foldString приводит строку к регистронезависимой форме (Unicode case folding).
// cases.Caser не потокобезопасен, поэтому создаем его на каждый вызов.
func foldString(s string) string {
	return cases.Fold().String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(foldString(haystack), foldString(needle))
}

func equalFold(a, b string) bool {
	return foldString(a) == foldString(b)
}
