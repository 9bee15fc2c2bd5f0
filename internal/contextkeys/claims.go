package contextkeys

import (
	"context"
	"listing-service/internal/core/domain"
)

type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

// ContextWithClaims кладет данные аутентифицированного пользователя в контекст
func ContextWithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext возвращает claims или false, если запрос не аутентифицирован
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}
