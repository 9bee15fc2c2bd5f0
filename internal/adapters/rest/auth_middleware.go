package rest

import (
	"net/http"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type AuthMiddleware struct {
	tokens port.TokenServicePort
}

func NewAuthMiddleware(tokens port.TokenServicePort) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate проверяет bearer-токен и кладет claims в контекст
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := am.tokens.ValidateToken(r.Context(), tokenString)
		if err != nil {
			contextkeys.LoggerFromContext(r.Context()).Warn("Token rejected", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := contextkeys.ContextWithClaims(r.Context(), claims)
		ctx = contextkeys.ContextWithLogger(ctx, contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"user_id": claims.UserID}))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerFromContext - id пользователя, установленный Authenticate
func callerFromContext(r *http.Request) (*domain.Claims, bool) {
	claims, ok := contextkeys.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}
