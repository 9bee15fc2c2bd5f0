package token_adapter

import (
	"context"
	"testing"
	"time"

	"listing-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenServiceRequiresKey(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestGenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	svc, err := NewTokenService("test-signing-key")
	require.NoError(t, err)

	token, err := svc.GenerateToken(ctx, domain.Claims{UserID: "u-42", Email: "a@b.in", Role: "owner"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, "a@b.in", claims.Email)
	assert.Equal(t, "owner", claims.Role)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	ctx := context.Background()
	issuerSvc, err := NewTokenService("key-one")
	require.NoError(t, err)
	otherSvc, err := NewTokenService("key-two")
	require.NoError(t, err)

	token, err := issuerSvc.GenerateToken(ctx, domain.Claims{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	_, err = otherSvc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = otherSvc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateRejectsExpired(t *testing.T) {
	ctx := context.Background()
	svc, err := NewTokenService("key")
	require.NoError(t, err)

	issued := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateToken(ctx, domain.Claims{UserID: "u-1"}, time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestGenerateRequiresUserID(t *testing.T) {
	svc, err := NewTokenService("key")
	require.NoError(t, err)
	_, err = svc.GenerateToken(context.Background(), domain.Claims{}, time.Hour)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
