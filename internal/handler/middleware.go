package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ecomloop/storefront/internal/domain/user"
)

type ctxKey int

const userKey ctxKey = iota

// userFrom returns the authenticated user stored by RequireAuth, or nil.
func userFrom(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey).(*user.User)
	return u
}

// RequireAuth authenticates the request from the access token cookie and
// stores the account in the request context. A missing, invalid, or orphaned
// token answers 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(accessCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ownerID, err := h.tokens.VerifyAccess(c.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		u, err := h.users.Get(r.Context(), ownerID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeInternalError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}
