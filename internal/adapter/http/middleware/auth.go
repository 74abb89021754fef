package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/infrastructure/auth"
)

// Authenticate verifies bearer tokens and stores the caller as a domain.Actor.
// When required is false, requests without a token pass through anonymously;
// a token that is present but invalid is always rejected.
func Authenticate(jwtManager *auth.JWTManager, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					writeError(w, http.StatusUnauthorized, "missing authorization header")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, domain.ErrExpiredToken) {
					msg = "token has expired"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := domain.ContextWithActor(r.Context(), claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
