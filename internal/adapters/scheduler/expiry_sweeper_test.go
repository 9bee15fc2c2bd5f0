package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"listing-service/internal/adapters/filestore"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExpire struct{}

func (failingExpire) Execute(ctx context.Context, now time.Time) (int, error) {
	return 0, domain.ErrStoreUnavailable
}

func ptr[T any](v T) *T { return &v }

func TestExpirySweeperRunOnce(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.NewPropertyFileStore("")
	require.NoError(t, err)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	d := domain.PropertyDraft{
		UserID:       "owner-1",
		Title:        "Old flat",
		PropertyType: domain.PropertyTypeApartment,
		ListingType:  domain.ListingTypeRent,
		City:         "Pune",
		Locality:     "Baner",
		Price:        ptr(1000.0),
		Area:         ptr(500.0),
		ExpiresAt:    ptr(base.Add(-time.Hour)),
	}
	created, err := store.Create(ctx, d)
	require.NoError(t, err)

	d.ExpiresAt = ptr(base.Add(time.Hour))
	_, err = store.Create(ctx, d)
	require.NoError(t, err)

	sweeper, err := NewExpirySweeper("@every 1h", usecase.NewExpireListingsUseCase(store), contextkeys.LoggerFromContext(ctx))
	require.NoError(t, err)
	sweeper.now = func() time.Time { return base }

	n, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)

	n, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpirySweeperErrors(t *testing.T) {
	logger := contextkeys.LoggerFromContext(context.Background())

	_, err := NewExpirySweeper("every hour", failingExpire{}, logger)
	assert.Error(t, err)

	_, err = NewExpirySweeper("@every 1h", nil, logger)
	assert.Error(t, err)

	sweeper, err := NewExpirySweeper("*/5 * * * *", failingExpire{}, logger)
	require.NoError(t, err)
	_, err = sweeper.RunOnce(context.Background())
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestExpirySweeperStartStop(t *testing.T) {
	sweeper, err := NewExpirySweeper("@every 1h", failingExpire{}, contextkeys.LoggerFromContext(context.Background()))
	require.NoError(t, err)

	sweeper.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sweeper.Stop(ctx))
}

func TestKvToFields(t *testing.T) {
	f := kvToFields([]interface{}{"entry", 1, 2, "x", "dangling"})
	assert.Equal(t, 1, f["entry"])
	assert.Len(t, f, 1)
}
