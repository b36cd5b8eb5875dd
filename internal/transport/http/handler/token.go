package handler

import (
	"context"
	"net/http"

	"github.com/go-authix/internal/domain"
	"github.com/go-authix/internal/transport/http/middleware"
)

type tokenService interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Revoke(ctx context.Context, userID uint64) error
}

// TokenHandler handles refresh and logout.
type TokenHandler struct {
	tokens tokenService
}

func NewTokenHandler(tokens tokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Refresh exchanges the refresh token carried in the Authorization header
// for a new access token.
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tok, ok := middleware.BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh token required")
		return
	}
	pair, err := h.tokens.Refresh(r.Context(), tok)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, pair)
}

func (h *TokenHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.tokens.Revoke(r.Context(), userID); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, nil)
}
