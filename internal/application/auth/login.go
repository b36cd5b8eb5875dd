package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-authix/internal/domain"
)

// LoginStrategy authenticates an identifier/credential pair and returns the
// matching user. Unknown identifiers and wrong credentials are both reported
// as domain.ErrInvalidCredentials.
type LoginStrategy interface {
	Authenticate(ctx context.Context, identifier, credential string) (*domain.User, error)
}

type passwordLogin struct {
	users  userStore
	hasher passwordHasher
}

func (p *passwordLogin) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAsInvalid(err)
	}
	ok, err := p.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// codeLogin authenticates with a one-time code delivered to the identifier.
type codeLogin struct {
	ledger codeLedger
	lookup func(ctx context.Context, identifier string) (*domain.User, error)
}

func (c *codeLogin) Authenticate(ctx context.Context, identifier, code string) (*domain.User, error) {
	ok, err := c.ledger.Verify(ctx, identifier, code, domain.SceneLogin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrInvalidCredentials)
	}
	u, err := c.lookup(ctx, identifier)
	if err != nil {
		return nil, notFoundAsInvalid(err)
	}
	return u, nil
}

// Login dispatches to the strategy named by req.LoginType and issues a token
// pair for the authenticated user.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	kind, err := domain.ParseStrategyKind(req.LoginType)
	if err != nil {
		return nil, err
	}
	strategy, ok := s.logins[kind]
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, domain.ErrUnknownStrategy)
	}
	u, err := strategy.Authenticate(ctx, req.Identifier, req.Credential)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		slog.Warn("failed to update last login", "user_id", u.ID, "err", err)
	}
	return s.issuer.Issue(ctx, strconv.FormatUint(u.ID, 10), strconv.FormatUint(u.TenantID, 10))
}

func notFoundAsInvalid(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidCredentials
	}
	return err
}
