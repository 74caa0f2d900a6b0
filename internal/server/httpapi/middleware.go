package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/server/auth"
	"github.com/lostgates/identity/internal/server/models"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFromContext returns the verified claims stored by authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// authenticate extracts and verifies the bearer token, allowing only the
// given purposes through. Missing, malformed, expired, or wrong-purpose
// tokens all end the request with 401.
func (h *Handler) authenticate(next http.HandlerFunc, purposes ...auth.TokenPurpose) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, common.ErrInvalidToken)
			return
		}
		tokenString := strings.TrimPrefix(header, common.BearerPrefix)

		claims, err := auth.ParseToken(tokenString, h.jwtSecret)
		if err != nil {
			writeError(w, err)
			return
		}

		allowed := false
		for _, p := range purposes {
			if claims.Purpose == p {
				allowed = true
				break
			}
		}
		if !allowed {
			writeError(w, common.ErrInvalidTokenPurpose)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// requireRole gates a handler on the role snapshot in the session token.
// A valid token with the wrong role is 403, distinct from the 401 of a
// failed authentication.
func (h *Handler) requireRole(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, common.ErrInvalidToken)
			return
		}
		if claims.Role != role {
			writeError(w, common.ErrorForbidden)
			return
		}
		next(w, r)
	}
}
