package user

import (
	"context"
	"fmt"

	"github.com/go-authix/internal/domain"
)

// MaxPageSize caps online-user listings.
const MaxPageSize = 200

type Service interface {
	Profile(ctx context.Context, userID uint64) (*domain.Profile, error)
	Delete(ctx context.Context, userID uint64) error
	OnlineCount(ctx context.Context) (uint64, error)
	Online(ctx context.Context, page, pageSize int) (*domain.PageResult[domain.Profile], error)
}

type userStore interface {
	GetProfile(ctx context.Context, userID uint64) (*domain.Profile, error)
	GetProfiles(ctx context.Context, ids []uint64) ([]domain.Profile, error)
	Delete(ctx context.Context, userID uint64) error
}

type sessionCounter interface {
	Count(ctx context.Context) (uint64, error)
	Page(ctx context.Context, page, pageSize int) (*domain.PageResult[uint64], error)
}

type revoker interface {
	Revoke(ctx context.Context, userID uint64) error
}

type service struct {
	repo     userStore
	sessions sessionCounter
	tokens   revoker
}

type ServiceDeps struct {
	UserRepo userStore
	Sessions sessionCounter
	Tokens   revoker
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, sessions: deps.Sessions, tokens: deps.Tokens}
}

func (s *service) Profile(ctx context.Context, userID uint64) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// Delete revokes the user's session before removing the account.
func (s *service) Delete(ctx context.Context, userID uint64) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID)
}

func (s *service) OnlineCount(ctx context.Context) (uint64, error) {
	return s.sessions.Count(ctx)
}

// Online returns one page of online users, soonest-expiring first. Users
// deleted since their session was recorded are dropped from the page.
func (s *service) Online(ctx context.Context, page, pageSize int) (*domain.PageResult[domain.Profile], error) {
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("page_size must be between 1 and %d: %w", MaxPageSize, domain.ErrValidation)
	}
	ids, err := s.sessions.Page(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repo.GetProfiles(ctx, ids.Records)
	if err != nil {
		return nil, err
	}
	return &domain.PageResult[domain.Profile]{Total: ids.Total, Records: profiles}, nil
}
