package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-authix/internal/domain"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenVerifier checks a bearer token of the expected type.
type TokenVerifier interface {
	Verify(token string, expected domain.TokenType) (*domain.TokenClaims, error)
}

// Auth returns middleware that validates the Bearer access token and injects claims into context.
// Only signature and expiry gate the request; revoked-but-unexpired tokens still pass.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := BearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.Verify(tokenStr, domain.TokenAccess)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// ClaimsFromContext extracts token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*domain.TokenClaims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*domain.TokenClaims)
	return c, ok
}

// UserIDFromContext returns the numeric subject of the authenticated caller.
func UserIDFromContext(ctx context.Context) (uint64, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
