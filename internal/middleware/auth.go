package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/services"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier is implemented by services.AuthService.
type TokenVerifier interface {
	ParseToken(token string) (*services.Claims, error)
	IsRevoked(ctx context.Context, claims *services.Claims) (bool, error)
}

func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			claims, err := verifier.ParseToken(token)
			if err != nil {
				services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
				return
			}

			revoked, err := verifier.IsRevoked(r.Context(), claims)
			if err != nil {
				logger.Error("token blacklist check failed", zap.Error(err))
				services.SendErrorResponse(w, "Service unavailable", http.StatusServiceUnavailable, nil)
				return
			}
			if revoked {
				services.SendErrorResponse(w, "Token has been revoked", http.StatusUnauthorized, nil)
				return
			}

			ctx := WithIdentity(r.Context(), models.Identity{UserID: claims.UserID, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the caller placed in ctx by AuthMiddleware.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok && identity.UserID > 0
}
