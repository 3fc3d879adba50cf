package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/happycart-io/happycart-backend/api/responses"
	"github.com/happycart-io/happycart-backend/internal/identity"
	pkgAuth "github.com/happycart-io/happycart-backend/pkg/auth"
	"github.com/happycart-io/happycart-backend/pkg/config"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// authenticated actor.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			actor, err := resolveActor(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(seedActor(r.Context(), logg, actor)))
		})
	}
}

// OptionalAuth resolves a bearer token when one is present but lets anonymous
// requests through. A token that is present and invalid still fails: silently
// downgrading a bad credential to anonymous would mask client bugs.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := resolveActor(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(seedActor(r.Context(), logg, actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func resolveActor(cfg config.JWTConfig, token string) (identity.Actor, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return identity.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	actor := identity.User(claims.UserID, claims.Role)
	if err := actor.Validate(); err != nil {
		return identity.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token claims")
	}
	return actor, nil
}

func seedActor(ctx context.Context, logg *logger.Logger, actor identity.Actor) context.Context {
	ctx = WithActor(ctx, actor)
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id":    actor.UserID().String(),
			"actor_role": string(actor.Role()),
		})
	}
	return ctx
}
