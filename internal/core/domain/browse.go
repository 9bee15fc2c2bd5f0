package domain

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
)

type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortAreaDesc   SortKey = "area_desc"
	SortMostViewed SortKey = "most_viewed"
	SortFeatured   SortKey = "featured"
)

var sortKeys = map[string]SortKey{
	"newest":      SortNewest,
	"price_asc":   SortPriceAsc,
	"price-asc":   SortPriceAsc,
	"price_desc":  SortPriceDesc,
	"price-desc":  SortPriceDesc,
	"area_desc":   SortAreaDesc,
	"area-desc":   SortAreaDesc,
	"most_viewed": SortMostViewed,
	"most-viewed": SortMostViewed,
	"featured":    SortFeatured,
}

// ParseSortKey разбирает ключ сортировки из запроса. Пустая строка - newest.
func ParseSortKey(s string) (SortKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNewest, true
	}
	key, ok := sortKeys[s]
	return key, ok
}

// BrowseFilters - состояние фильтров страниц Buy/Rent.
type BrowseFilters struct {
	Query        string
	City         string
	PropertyType string
	ListingType  string
	Bedrooms     *int
	PriceMin     *float64
	PriceMax     *float64
	Amenities    []string
	Sort         SortKey
}

// ApplyBrowseFilters отбирает и сортирует записи по состоянию фильтров.
// Чистая функция: входной срез не изменяется, I/O нет.
func ApplyBrowseFilters(records []Property, f BrowseFilters) []Property {
	m := newBrowseMatcher(f)

	out := make([]Property, 0, len(records))
	for i := range records {
		if m.matches(&records[i]) {
			out = append(out, records[i])
		}
	}

	slices.SortStableFunc(out, comparatorFor(f.Sort))
	return out
}

// browseMatcher хранит заранее нормализованные значения фильтров
type browseMatcher struct {
	f         BrowseFilters
	query     string
	city      string
	amenities []string
}

func newBrowseMatcher(f BrowseFilters) *browseMatcher {
	m := &browseMatcher{f: f}
	if q := strings.TrimSpace(f.Query); q != "" {
		m.query = foldString(q)
	}
	if c := strings.TrimSpace(f.City); c != "" {
		m.city = foldString(c)
	}
	for _, a := range f.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			m.amenities = append(m.amenities, foldString(a))
		}
	}
	return m
}

func (m *browseMatcher) matches(p *Property) bool {
	if m.query != "" && !m.matchesQuery(p) {
		return false
	}
	if m.city != "" && !strings.Contains(foldString(p.City), m.city) {
		return false
	}
	if m.f.PropertyType != "" && !equalFold(string(p.PropertyType), m.f.PropertyType) {
		return false
	}
	if m.f.ListingType != "" && !equalFold(string(p.ListingType), m.f.ListingType) {
		return false
	}
	if m.f.Bedrooms != nil && (p.Bedrooms == nil || *p.Bedrooms != *m.f.Bedrooms) {
		return false
	}
	if m.f.PriceMin != nil && p.Price < *m.f.PriceMin {
		return false
	}
	if m.f.PriceMax != nil && p.Price > *m.f.PriceMax {
		return false
	}
	if len(m.amenities) > 0 && !hasAllAmenities(p.Amenities, m.amenities) {
		return false
	}
	return true
}

// matchesQuery ищет подстроку в заголовке и полях локации
func (m *browseMatcher) matchesQuery(p *Property) bool {
	fields := []string{p.Title, p.City, p.Locality}
	if p.Address != nil {
		fields = append(fields, *p.Address)
	}
	for _, field := range fields {
		if strings.Contains(foldString(field), m.query) {
			return true
		}
	}
	return false
}

// hasAllAmenities - вложение множеств, а не пересечение
func hasAllAmenities(have []string, required []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[foldString(strings.TrimSpace(a))] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

func comparatorFor(key SortKey) func(a, b Property) int {
	var primary func(a, b *Property) int
	switch key {
	case SortPriceAsc:
		primary = func(a, b *Property) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		primary = func(a, b *Property) int { return cmp.Compare(b.Price, a.Price) }
	case SortAreaDesc:
		primary = func(a, b *Property) int { return cmp.Compare(b.Area, a.Area) }
	case SortMostViewed:
		primary = func(a, b *Property) int { return cmp.Compare(b.Views, a.Views) }
	case SortFeatured:
		primary = func(a, b *Property) int {
			if c := compareBoolDesc(a.IsFeatured, b.IsFeatured); c != 0 {
				return c
			}
			if c := cmp.Compare(PlanFor(b.PlanType).BoostRank, PlanFor(a.PlanType).BoostRank); c != 0 {
				return c
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	default:
		primary = func(a, b *Property) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}

	// id по возрастанию делает порядок полным
	return func(a, b Property) int {
		if c := primary(&a, &b); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	}
}

func compareBoolDesc(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
