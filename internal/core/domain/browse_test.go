package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func strPtr(v string) *string       { return &v }
func mustID(s string) uuid.UUID     { return uuid.MustParse(s) }
func ago(d time.Duration) time.Time { return baseTime.Add(-d) }

func fixtureProperties() []Property {
	return []Property{
		{
			ID: mustID("00000000-0000-0000-0000-000000000003"), CreatedAt: ago(1 * time.Hour),
			Title: "Sea view apartment", PropertyType: PropertyTypeApartment, ListingType: ListingTypeSell,
			City: "Mumbai", Locality: "Bandra West", Address: strPtr("Carter Road 12"),
			Price: 25_000_000, Area: 1200, Bedrooms: intPtr(3),
			Amenities: []string{"Parking", "Gym", "Pool"}, PlanType: PlanPremium, Status: StatusActive, Views: 40,
		},
		{
			ID: mustID("00000000-0000-0000-0000-000000000001"), CreatedAt: ago(2 * time.Hour),
			Title: "Cozy studio", PropertyType: PropertyTypeStudio, ListingType: ListingTypeRent,
			City: "Pune", Locality: "Koregaon Park",
			Price: 18_000, Area: 450, Bedrooms: intPtr(1),
			Amenities: []string{"parking"}, PlanType: PlanFree, Status: StatusActive, Views: 40,
		},
		{
			ID: mustID("00000000-0000-0000-0000-000000000002"), CreatedAt: ago(3 * time.Hour),
			Title: "Family villa", PropertyType: PropertyTypeVilla, ListingType: ListingTypeSell,
			City: "Navi Mumbai", Locality: "Kharghar",
			Price: 15_000_000, Area: 3000, Bedrooms: intPtr(4),
			Amenities: []string{"Garden", "Parking", "gym"}, PlanType: PlanBasic, Status: StatusActive, Views: 7,
			IsFeatured: true,
		},
		{
			ID: mustID("00000000-0000-0000-0000-000000000004"), CreatedAt: ago(1 * time.Hour),
			Title: "Office floor", PropertyType: PropertyTypeCommercial, ListingType: ListingTypeRent,
			City: "Bengaluru", Locality: "Whitefield",
			Price: 250_000, Area: 5000,
			PlanType: PlanAssisted, Status: StatusActive, Views: 3,
		},
	}
}

func ids(records []Property) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID.String()[len(r.ID.String())-1:])
	}
	return out
}

func TestApplyBrowseFilters_Query(t *testing.T) {
	records := fixtureProperties()

	t.Run("empty query matches all", func(t *testing.T) {
		got := ApplyBrowseFilters(records, BrowseFilters{})
		assert.Len(t, got, len(records))
	})

	t.Run("matches title case-insensitively", func(t *testing.T) {
		got := ApplyBrowseFilters(records, BrowseFilters{Query: "STUDIO"})
		assert.Equal(t, []string{"1"}, ids(got))
	})

	t.Run("matches locality and address", func(t *testing.T) {
		assert.Equal(t, []string{"2"}, ids(ApplyBrowseFilters(records, BrowseFilters{Query: "kharghar"})))
		assert.Equal(t, []string{"3"}, ids(ApplyBrowseFilters(records, BrowseFilters{Query: "carter road"})))
	})

	t.Run("matches city substring", func(t *testing.T) {
		got := ApplyBrowseFilters(records, BrowseFilters{Query: "mumbai"})
		assert.ElementsMatch(t, []string{"3", "2"}, ids(got))
	})
}

func TestApplyBrowseFilters_Conjunction(t *testing.T) {
	records := fixtureProperties()

	f := BrowseFilters{
		City:         "mumbai",
		PropertyType: "Villa",
		ListingType:  "sell",
		Bedrooms:     intPtr(4),
		PriceMin:     floatPtr(1_000_000),
		PriceMax:     floatPtr(20_000_000),
		Amenities:    []string{"parking", "GYM"},
	}
	got := ApplyBrowseFilters(records, f)
	assert.Equal(t, []string{"2"}, ids(got))

	// каждое условие по отдельности отсекает запись
	f.Bedrooms = intPtr(3)
	assert.Empty(t, ApplyBrowseFilters(records, f))
}

func TestApplyBrowseFilters_PriceRangeInclusive(t *testing.T) {
	records := fixtureProperties()

	got := ApplyBrowseFilters(records, BrowseFilters{
		PriceMin: floatPtr(18_000),
		PriceMax: floatPtr(250_000),
	})
	assert.ElementsMatch(t, []string{"1", "4"}, ids(got))

	got = ApplyBrowseFilters(records, BrowseFilters{PriceMin: floatPtr(25_000_000)})
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestApplyBrowseFilters_AmenitySuperset(t *testing.T) {
	records := []Property{
		{ID: mustID("00000000-0000-0000-0000-00000000000a"), Amenities: []string{"parking"}},
		{ID: mustID("00000000-0000-0000-0000-00000000000b"), Amenities: []string{"parking", "gym"}},
	}

	got := ApplyBrowseFilters(records, BrowseFilters{Amenities: []string{"parking", "gym"}})
	require.Len(t, got, 1)
	assert.Equal(t, records[1].ID, got[0].ID)
}

func TestApplyBrowseFilters_Sorting(t *testing.T) {
	records := fixtureProperties()

	tests := []struct {
		name string
		sort SortKey
		want []string
	}{
		// 3 и 4 созданы одновременно, порядок решает id
		{"newest", SortNewest, []string{"3", "4", "1", "2"}},
		{"default is newest", "", []string{"3", "4", "1", "2"}},
		{"price ascending", SortPriceAsc, []string{"1", "4", "2", "3"}},
		{"price descending", SortPriceDesc, []string{"3", "2", "4", "1"}},
		{"area descending", SortAreaDesc, []string{"4", "2", "3", "1"}},
		// у 1 и 3 одинаковые просмотры
		{"most viewed", SortMostViewed, []string{"1", "3", "2", "4"}},
		{"featured", SortFeatured, []string{"2", "4", "3", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyBrowseFilters(records, BrowseFilters{Sort: tt.sort})
			assert.Equal(t, tt.want, ids(got))

			again := ApplyBrowseFilters(records, BrowseFilters{Sort: tt.sort})
			assert.Equal(t, ids(got), ids(again))
		})
	}
}

func TestApplyBrowseFilters_DoesNotMutateInput(t *testing.T) {
	records := fixtureProperties()
	before := ids(records)

	_ = ApplyBrowseFilters(records, BrowseFilters{Sort: SortPriceAsc})

	assert.Equal(t, before, ids(records))
}

func TestApplyBrowseFilters_EmptyResult(t *testing.T) {
	got := ApplyBrowseFilters(fixtureProperties(), BrowseFilters{City: "Chennai"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseSortKey(t *testing.T) {
	key, ok := ParseSortKey("")
	assert.True(t, ok)
	assert.Equal(t, SortNewest, key)

	key, ok = ParseSortKey("Price-Desc")
	assert.True(t, ok)
	assert.Equal(t, SortPriceDesc, key)

	_, ok = ParseSortKey("cheapest")
	assert.False(t, ok)
}
