package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ecomloop/storefront/internal/domain/token"
	"github.com/ecomloop/storefront/internal/domain/user"
)

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// SignUp registers an account and starts a session in one step.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	u, err := h.users.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	pair, err := h.tokens.Issue(r.Context(), u.ID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Login verifies credentials and refreshes the session cookies.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidLogin) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	pair, err := h.tokens.Issue(r.Context(), u.ID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Logout revokes the refresh token and clears both cookies. Succeeds even
// without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(refreshCookie); err == nil {
		if err := h.tokens.Revoke(r.Context(), c.Value); err != nil {
			writeInternalError(w, r, err)
			return
		}
	}
	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RefreshToken rotates the access token using the refresh cookie.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(refreshCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "no refresh token")
		return
	}

	access, err := h.tokens.RotateAccess(r.Context(), c.Value)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrInvalidCredential),
			errors.Is(err, token.ErrCredentialMismatch),
			errors.Is(err, token.ErrNotFound):
			h.clearSessionCookies(w)
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	h.setAccessCookie(w, access)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Profile returns the authenticated account.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
