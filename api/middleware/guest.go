package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/greencartlabs/greencart-backend/pkg/logger"
)

const guestTokenHeader = "X-Guest-Token"

// GuestToken reads the anonymous cart token from the request, minting one
// when neither a token nor an authenticated user is present. The token is
// always echoed back so the storefront can persist it client-side.
func GuestToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := strings.TrimSpace(r.Header.Get(guestTokenHeader))
			if token == "" {
				if UserIDFromContext(ctx) != "" {
					next.ServeHTTP(w, r)
					return
				}
				token = uuid.NewString()
			}

			w.Header().Set(guestTokenHeader, token)
			ctx = WithGuestToken(ctx, token)
			if logg != nil {
				ctx = logg.WithGuestToken(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
