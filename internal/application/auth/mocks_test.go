package auth

import (
	"context"

	"github.com/go-authix/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) user(args mock.Arguments) (*domain.User, error) {
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.user(m.Called(ctx, username))
}
func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return m.user(m.Called(ctx, phone))
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.user(m.Called(ctx, email))
}
func (m *mockUserStore) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return m.user(m.Called(ctx, u))
}
func (m *mockUserStore) UpdateLastLogin(ctx context.Context, userID uint64) (*domain.User, error) {
	return m.user(m.Called(ctx, userID))
}

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(ctx context.Context, plain string) (string, error) {
	args := m.Called(ctx, plain)
	return args.String(0), args.Error(1)
}
func (m *mockHasher) Verify(ctx context.Context, plain, encoded string) (bool, error) {
	args := m.Called(ctx, plain, encoded)
	return args.Bool(0), args.Error(1)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Send(ctx context.Context, identifier string) (string, error) {
	args := m.Called(ctx, identifier)
	return args.String(0), args.Error(1)
}
func (m *mockLedger) Verify(ctx context.Context, identifier, candidate string, scene domain.Scene) (bool, error) {
	args := m.Called(ctx, identifier, candidate, scene)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedger) Eligible(ctx context.Context, identifier string) (bool, error) {
	args := m.Called(ctx, identifier)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedger) ClearEligibility(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue(ctx context.Context, subject, tenantID string) (*domain.TokenPair, error) {
	args := m.Called(ctx, subject, tenantID)
	if p, _ := args.Get(0).(*domain.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendCode(ctx context.Context, kind domain.StrategyKind, identifier, code string) error {
	return m.Called(ctx, kind, identifier, code).Error(0)
}

type fixture struct {
	users    *mockUserStore
	hasher   *mockHasher
	ledger   *mockLedger
	issuer   *mockIssuer
	notifier *mockNotifier
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{
		users:    &mockUserStore{},
		hasher:   &mockHasher{},
		ledger:   &mockLedger{},
		issuer:   &mockIssuer{},
		notifier: &mockNotifier{},
	}
	f.svc = NewService(ServiceDeps{
		UserRepo: f.users,
		Hasher:   f.hasher,
		Ledger:   f.ledger,
		Issuer:   f.issuer,
		Notifier: f.notifier,
	})
	return f
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.users.AssertExpectations(t)
	f.hasher.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
	f.issuer.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func strp(s string) *string { return &s }
