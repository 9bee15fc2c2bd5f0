package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"listing-service/internal/adapters/filestore"
	token_adapter "listing-service/internal/adapters/jwt"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenSearchStorage имитирует недоступное удаленное хранилище для Search
type brokenSearchStorage struct {
	port.PropertyStoragePort
	broken bool
}

func (s *brokenSearchStorage) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Property, error) {
	if s.broken {
		return nil, fmt.Errorf("select properties: %w", domain.ErrStoreUnavailable)
	}
	return s.PropertyStoragePort.Search(ctx, c)
}

type testAPI struct {
	handler http.Handler
	storage *brokenSearchStorage
	tokens  *token_adapter.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	files, err := filestore.NewPropertyFileStore("")
	require.NoError(t, err)
	storage := &brokenSearchStorage{PropertyStoragePort: files}

	tokens, err := token_adapter.NewTokenService("test-signing-key")
	require.NoError(t, err)

	properties := NewPropertyHandler(PropertyUseCases{
		Create: usecase.NewCreatePropertyUseCase(storage, nil),
		Get:    usecase.NewGetPropertyUseCase(storage),
		List:   usecase.NewListActivePropertiesUseCase(storage, 20),
		Owner:  usecase.NewListOwnerPropertiesUseCase(storage),
		Update: usecase.NewUpdatePropertyUseCase(storage, nil),
		Delete: usecase.NewDeletePropertyUseCase(storage, nil),
		Search: usecase.NewSearchPropertiesUseCase(storage),
		Browse: usecase.NewBrowsePropertiesUseCase(storage),
		Lead:   usecase.NewRecordLeadUseCase(storage, nil),
	})
	calculators := NewCalculatorHandler(usecase.NewCalculateEMIUseCase(), usecase.NewGetPlansUseCase())

	handler := NewRouter(
		ServerConfig{RequestTimeout: 5 * time.Second},
		properties,
		calculators,
		NewHealthHandler(files),
		NewAuthMiddleware(tokens),
		contextkeys.LoggerFromContext(context.Background()),
	)
	return &testAPI{handler: handler, storage: storage, tokens: tokens}
}

func (a *testAPI) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := a.tokens.GenerateToken(context.Background(), domain.Claims{UserID: userID, Email: userID + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) operatorToken(t *testing.T) string {
	t.Helper()
	tok, err := a.tokens.GenerateToken(context.Background(), domain.Claims{UserID: "staff-1", Role: domain.RoleOperator}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createBody(title, city, listingType string, price float64, amenities ...string) string {
	am, _ := json.Marshal(amenities)
	if amenities == nil {
		am = []byte("[]")
	}
	return fmt.Sprintf(`{
		"title": %q,
		"property_type": "apartment",
		"listing_type": %q,
		"city": %q,
		"locality": "Centre",
		"price": %v,
		"area": 1000,
		"bedrooms": 2,
		"amenities": %s,
		"images": ["cover.jpg"]
	}`, title, listingType, city, price, am)
}

func (a *testAPI) create(t *testing.T, token, body string) PropertyResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/properties", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[PropertyResponse](t, rec)
}

func TestCreateAndGet(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "owner-1")

	created := api.create(t, tok, createBody("Lake view", "Bhopal", "sell", 4_500_000))
	assert.Equal(t, "owner-1", created.UserID)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, "free", created.PlanType)
	assert.Equal(t, []string{"cover.jpg"}, created.Images)

	rec := api.do(t, http.MethodGet, "/api/v1/properties/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[PropertyResponse](t, rec)
	assert.Equal(t, "Lake view", got.Title)
	assert.Equal(t, 1, got.Views)

	rec = api.do(t, http.MethodGet, "/api/v1/properties/"+created.ID, "", "")
	assert.Equal(t, 2, decode[PropertyResponse](t, rec).Views)
}

func TestCreateRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/properties", createBody("x", "Goa", "sell", 1), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/properties", createBody("x", "Goa", "sell", 1), "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSchemaRejection(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "owner-1")

	rec := api.do(t, http.MethodPost, "/api/v1/properties", `{"title": "only title"}`, tok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ValidationErrorResponse](t, rec)
	assert.NotEmpty(t, resp.Fields)

	// user_id задается только токеном
	body := strings.Replace(createBody("x", "Goa", "sell", 1), `"title"`, `"user_id": "someone-else", "title"`, 1)
	rec = api.do(t, http.MethodPost, "/api/v1/properties", body, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/properties", createBody("x", "Goa", "sell", -5), tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanPhotoLimit(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token(t, "owner-1")

	// бесплатный тариф фото не ограничивает
	body := strings.Replace(createBody("x", "Goa", "sell", 1), `["cover.jpg"]`, `["1.jpg","2.jpg","3.jpg","4.jpg","5.jpg","6.jpg"]`, 1)
	created := api.create(t, tok, body)
	assert.Equal(t, "free", created.PlanType)
	assert.Len(t, created.Images, 6)

	// у basic лимит 5 фото, запись после слияния не проходит проверку
	rec := api.do(t, http.MethodPatch, "/api/v1/properties/"+created.ID, `{"plan_type":"basic"}`, api.operatorToken(t))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	resp := decode[ValidationErrorResponse](t, rec)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "images", resp.Fields[0].Field)
}

func TestGetErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/properties/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/properties/7f8c0a52-3b79-4b1b-9d3f-2f1d6a0f9b11", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Property not found", decode[ErrorResponse](t, rec).Error)
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token(t, "owner-1")
	stranger := api.token(t, "owner-2")

	created := api.create(t, owner, createBody("old", "Agra", "sell", 10))
	path := "/api/v1/properties/" + created.ID

	rec := api.do(t, http.MethodPatch, path, `{"title": "hijacked"}`, stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPatch, path, `{"title": "new", "status": "sold"}`, owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[PropertyResponse](t, rec)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "sold", updated.Status)

	rec = api.do(t, http.MethodPatch, path, `{"views": 1000}`, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, path, `{}`, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, path, "", stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodDelete, path, "", owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, path, "", owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token(t, "owner-1")

	api.create(t, owner, createBody("Flat A", "Mumbai", "sell", 100, "gym", "pool"))
	api.create(t, owner, createBody("Flat B", "Mumbai", "rent", 200, "gym"))
	hidden := api.create(t, owner, createBody("Flat C", "Pune", "sell", 300))
	rec := api.do(t, http.MethodPatch, "/api/v1/properties/"+hidden.ID, `{"status": "inactive"}`, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("list active", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/properties?limit=1", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ObjectsResponse](t, rec)
		require.Len(t, resp.Objects, 1)
		assert.Equal(t, "Flat B", resp.Objects[0].Title)

		rec = api.do(t, http.MethodGet, "/api/v1/properties?limit=abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/properties/search?city=mumbai&minPrice=150", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ObjectsResponse](t, rec)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "Flat B", resp.Objects[0].Title)

		rec = api.do(t, http.MethodGet, "/api/v1/properties/search?minPrice=500&maxPrice=100", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no results is an empty array", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/properties/search?city=Delhi", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"objects": [], "count": 0}`, rec.Body.String())
	})

	t.Run("failed search is distinguishable", func(t *testing.T) {
		api.storage.broken = true
		defer func() { api.storage.broken = false }()

		rec := api.do(t, http.MethodGet, "/api/v1/properties/search?city=Delhi", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
	})

	t.Run("browse", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/properties/browse?q=flat&amenities=gym,pool&sort=price_asc", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ObjectsResponse](t, rec)
		require.Len(t, resp.Objects, 1)
		assert.Equal(t, "Flat A", resp.Objects[0].Title)

		rec = api.do(t, http.MethodGet, "/api/v1/properties/browse?listingType=rent", "", "")
		assert.Equal(t, 1, decode[ObjectsResponse](t, rec).Count)

		rec = api.do(t, http.MethodGet, "/api/v1/properties/browse?sort=price_desc", "", "")
		resp = decode[ObjectsResponse](t, rec)
		require.Len(t, resp.Objects, 2)
		assert.Equal(t, "Flat B", resp.Objects[0].Title)

		rec = api.do(t, http.MethodGet, "/api/v1/properties/browse?sort=cheapest", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("my listings include inactive", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/v1/me/properties", "", owner)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, decode[ObjectsResponse](t, rec).Count)

		rec = api.do(t, http.MethodGet, "/api/v1/me/properties", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRecordLeadLimit(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token(t, "owner-1")
	created := api.create(t, owner, createBody("Flat", "Goa", "rent", 100))
	path := "/api/v1/properties/" + created.ID + "/leads"

	rec := api.do(t, http.MethodPatch, "/api/v1/properties/"+created.ID, `{"plan_type":"basic"}`, api.operatorToken(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for i := 1; i <= domain.PlanFor(domain.PlanBasic).MaxLeads; i++ {
		rec := api.do(t, http.MethodPost, path, "", "")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, i, decode[LeadResponse](t, rec).Leads)
	}

	rec = api.do(t, http.MethodPost, path, "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOwnerCannotSetOperatorFields(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token(t, "owner-1")

	body := `{"title":"Sea view","property_type":"villa","listing_type":"sell","city":"Goa","locality":"Candolim",
		"price":100,"area":100,"is_verified":true,"is_featured":true,"plan_type":"assisted","expires_at":"2999-01-01T00:00:00Z"}`
	rec := api.do(t, http.MethodPost, "/api/v1/properties", body, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	created := api.create(t, owner, createBody("Flat", "Goa", "rent", 100))
	path := "/api/v1/properties/" + created.ID

	rec = api.do(t, http.MethodPatch, path, `{"is_verified":true,"is_featured":true,"plan_type":"assisted"}`, owner)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[PropertyResponse](t, rec)
	assert.False(t, got.IsVerified)
	assert.False(t, got.IsFeatured)
	assert.Equal(t, "free", got.PlanType)

	rec = api.do(t, http.MethodPatch, path, `{"is_verified":true,"plan_type":"premium"}`, api.operatorToken(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode[PropertyResponse](t, rec)
	assert.True(t, got.IsVerified)
	assert.Equal(t, "premium", got.PlanType)
	assert.Equal(t, "owner-1", got.UserID)
}

func TestPatchNullClearsNullableFields(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token(t, "owner-1")

	body := `{"title":"Flat","property_type":"apartment","listing_type":"rent","city":"Pune","locality":"Aundh",
		"price":100,"area":100,"bedrooms":2,"bathrooms":1,"description":"quiet","address":"Lane 3","floor_plan":"fp.pdf"}`
	created := api.create(t, owner, body)
	require.NotNil(t, created.Description)

	path := "/api/v1/properties/" + created.ID
	rec := api.do(t, http.MethodPatch, path, `{"description":null,"address":null,"bedrooms":null}`, owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[PropertyResponse](t, rec)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.Bedrooms)
	require.NotNil(t, got.Bathrooms)
	assert.Equal(t, 1, *got.Bathrooms)
	require.NotNil(t, got.FloorPlan)
	assert.Equal(t, "fp.pdf", *got.FloorPlan)

	rec = api.do(t, http.MethodPatch, path, `{"bedrooms":"two"}`, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
