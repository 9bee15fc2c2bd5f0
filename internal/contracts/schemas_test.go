package contracts

import (
	"testing"

	"listing-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCreate = `{
	"title": "2BHK in Baner",
	"property_type": "apartment",
	"listing_type": "rent",
	"city": "Pune",
	"locality": "Baner",
	"price": 28000,
	"area": 950,
	"bedrooms": 2,
	"amenities": ["parking"],
	"images": ["https://cdn.example/1.jpg"]
}`

func TestValidatePropertyCreate(t *testing.T) {
	require.NoError(t, ValidateMessage(PropertyCreate, Version1, []byte(validCreate)))
}

func TestValidatePropertyCreateRejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing required", `{"title": "x"}`, "body"},
		{"negative price", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":-1,"area":1}`, "price"},
		{"fractional bedrooms", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"bedrooms":1.5}`, "bedrooms"},
		{"unknown type", `{"title":"x","property_type":"castle","listing_type":"sell","city":"a","locality":"b","price":1,"area":1}`, "property_type"},
		{"unknown field", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"views":100}`, "body"},
		{"user id not accepted", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"user_id":"u"}`, "body"},
		{"verification is not set by owner", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"is_verified":true}`, "body"},
		{"plan is not chosen by owner", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"plan_type":"assisted"}`, "body"},
		{"expiry is not set by owner", `{"title":"x","property_type":"villa","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"expires_at":"2999-01-01T00:00:00Z"}`, "body"},
		{"not json", `{`, "body"},
		{"trailing document", validCreate + `{"title":"y"}`, "body"},
		{"trailing garbage", validCreate + `]`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(PropertyCreate, Version1, []byte(tt.body))
			require.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateMessageToleratesSurroundingWhitespace(t *testing.T) {
	require.NoError(t, ValidateMessage(PropertyCreate, Version1, []byte("\n  "+validCreate+"\n\t")))
}

func TestValidateListingImport(t *testing.T) {
	withUser := `{"user_id":"agent-7","title":"x","property_type":"plot","listing_type":"sell","city":"a","locality":"b","price":1,"area":1}`
	require.NoError(t, ValidateMessage(ListingImport, Version1, []byte(withUser)))

	// импорт идет от доверенного партнера и может нести тариф и срок
	withPlan := `{"user_id":"agent-7","title":"x","property_type":"plot","listing_type":"sell","city":"a","locality":"b","price":1,"area":1,"plan_type":"premium","expires_at":"2025-06-01T00:00:00Z"}`
	require.NoError(t, ValidateMessage(ListingImport, Version1, []byte(withPlan)))

	withoutUser := `{"title":"x","property_type":"plot","listing_type":"sell","city":"a","locality":"b","price":1,"area":1}`
	assert.ErrorIs(t, ValidateMessage(ListingImport, Version1, []byte(withoutUser)), domain.ErrValidation)
}

func TestValidatePropertyEvent(t *testing.T) {
	ok := `{"event_type":"property.lead","property_id":"6f1c7d2e-8a55-4c1e-9a51-0d3c1f6b2a10","user_id":"u","status":"active","leads":3,"occurred_at":"2025-06-01T10:00:00Z"}`
	require.NoError(t, ValidateMessage(PropertyEvent, Version1, []byte(ok)))

	bad := `{"event_type":"property.viewed","property_id":"nope","user_id":"u","status":"active","leads":3,"occurred_at":"2025-06-01T10:00:00Z"}`
	assert.Error(t, ValidateMessage(PropertyEvent, Version1, []byte(bad)))
}

func TestUnknownSchema(t *testing.T) {
	err := ValidateMessage("Nope", Version1, []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}
