package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-authix/internal/domain"
	"github.com/go-authix/internal/pkg/validate"
)

// RegisterStrategy describes how one identifier kind is validated, checked
// for uniqueness and stored on a new user.
type RegisterStrategy interface {
	Validate(identifier string) error
	Lookup(ctx context.Context, identifier string) (*domain.User, error)
	// RequiresVerifiedContact reports whether a register-scene code must have
	// been verified for the identifier before the account can be created.
	RequiresVerifiedContact() bool
	Assign(u *domain.User, identifier string)
}

type usernameRegistrar struct{ users userStore }

func (r usernameRegistrar) Validate(s string) error { return validate.Username(s) }
func (r usernameRegistrar) Lookup(ctx context.Context, s string) (*domain.User, error) {
	return r.users.GetByUsername(ctx, s)
}
func (r usernameRegistrar) RequiresVerifiedContact() bool   { return false }
func (r usernameRegistrar) Assign(u *domain.User, s string) { u.Username = &s }

type phoneRegistrar struct{ users userStore }

func (r phoneRegistrar) Validate(s string) error { return validate.Phone(s) }
func (r phoneRegistrar) Lookup(ctx context.Context, s string) (*domain.User, error) {
	return r.users.GetByPhone(ctx, s)
}
func (r phoneRegistrar) RequiresVerifiedContact() bool   { return true }
func (r phoneRegistrar) Assign(u *domain.User, s string) { u.Phone = &s }

type emailRegistrar struct{ users userStore }

func (r emailRegistrar) Validate(s string) error { return validate.Email(s) }
func (r emailRegistrar) Lookup(ctx context.Context, s string) (*domain.User, error) {
	return r.users.GetByEmail(ctx, s)
}
func (r emailRegistrar) RequiresVerifiedContact() bool   { return true }
func (r emailRegistrar) Assign(u *domain.User, s string) { u.Email = &s }

// Register creates an account for the identifier kind named by
// req.RegisterType and returns the new user id. All input validation happens
// before any store or cache access.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (uint64, error) {
	kind, err := domain.ParseStrategyKind(req.RegisterType)
	if err != nil {
		return 0, err
	}
	strategy, ok := s.registrars[kind]
	if !ok {
		return 0, fmt.Errorf("%q: %w", kind, domain.ErrUnknownStrategy)
	}
	if err := strategy.Validate(req.Identifier); err != nil {
		return 0, err
	}
	if err := validate.Password(req.Credential); err != nil {
		return 0, err
	}

	// Contact-verified kinds need a live eligibility flag before anything
	// else; a consumed flag reports ErrCodeExpired even for a taken identifier.
	if strategy.RequiresVerifiedContact() {
		eligible, err := s.ledger.Eligible(ctx, req.Identifier)
		if err != nil {
			return 0, err
		}
		if !eligible {
			return 0, domain.ErrCodeExpired
		}
	}

	if _, err := strategy.Lookup(ctx, req.Identifier); err == nil {
		return 0, fmt.Errorf("%s already registered: %w", kind, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}

	hash, err := s.hasher.Hash(ctx, req.Credential)
	if err != nil {
		return 0, err
	}
	createdBy := req.Identifier
	u := &domain.User{
		TenantID:     s.tenantID,
		PasswordHash: hash,
		CreatedBy:    &createdBy,
	}
	strategy.Assign(u, req.Identifier)

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return 0, err
	}
	if strategy.RequiresVerifiedContact() {
		if err := s.ledger.ClearEligibility(ctx, req.Identifier); err != nil {
			slog.Warn("failed to clear registration eligibility", "user_id", created.ID, "err", err)
		}
	}
	return created.ID, nil
}
