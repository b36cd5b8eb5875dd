package auth

import (
	"context"
	"fmt"

	"github.com/go-authix/internal/domain"
	"github.com/go-authix/internal/pkg/validate"
)

// Service is the entry point for login, registration and verification-code flows.
type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)
	Register(ctx context.Context, req domain.RegisterRequest) (uint64, error)
	SendCode(ctx context.Context, req domain.SendCodeRequest) (string, error)
	VerifyCode(ctx context.Context, req domain.VerifyCodeRequest) (bool, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, userID uint64) (*domain.User, error)
}

type passwordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, encoded string) (bool, error)
}

type codeLedger interface {
	Send(ctx context.Context, identifier string) (string, error)
	Verify(ctx context.Context, identifier, candidate string, scene domain.Scene) (bool, error)
	Eligible(ctx context.Context, identifier string) (bool, error)
	ClearEligibility(ctx context.Context, identifier string) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, subject, tenantID string) (*domain.TokenPair, error)
}

type codeNotifier interface {
	SendCode(ctx context.Context, kind domain.StrategyKind, identifier, code string) error
}

type service struct {
	users      userStore
	hasher     passwordHasher
	ledger     codeLedger
	issuer     tokenIssuer
	notifier   codeNotifier
	tenantID   uint64
	logins     map[domain.StrategyKind]LoginStrategy
	registrars map[domain.StrategyKind]RegisterStrategy
}

type ServiceDeps struct {
	UserRepo        userStore
	Hasher          passwordHasher
	Ledger          codeLedger
	Issuer          tokenIssuer
	Notifier        codeNotifier
	DefaultTenantID uint64
}

// NewService wires the strategy registries. They are fixed for the lifetime
// of the service.
func NewService(deps ServiceDeps) Service {
	s := &service{
		users:    deps.UserRepo,
		hasher:   deps.Hasher,
		ledger:   deps.Ledger,
		issuer:   deps.Issuer,
		notifier: deps.Notifier,
		tenantID: deps.DefaultTenantID,
	}
	s.logins = map[domain.StrategyKind]LoginStrategy{
		domain.StrategyPassword: &passwordLogin{users: deps.UserRepo, hasher: deps.Hasher},
		domain.StrategySMS:      &codeLogin{ledger: deps.Ledger, lookup: deps.UserRepo.GetByPhone},
		domain.StrategyEmail:    &codeLogin{ledger: deps.Ledger, lookup: deps.UserRepo.GetByEmail},
	}
	s.registrars = map[domain.StrategyKind]RegisterStrategy{
		domain.StrategyPassword: usernameRegistrar{users: deps.UserRepo},
		domain.StrategySMS:      phoneRegistrar{users: deps.UserRepo},
		domain.StrategyEmail:    emailRegistrar{users: deps.UserRepo},
	}
	return s
}

// SendCode issues a verification code for an sms or email identifier and
// hands it to the delivery channel. The code is returned to the caller.
func (s *service) SendCode(ctx context.Context, req domain.SendCodeRequest) (string, error) {
	kind, err := domain.ParseStrategyKind(req.VerifyType)
	if err != nil {
		return "", err
	}
	if kind == domain.StrategyPassword {
		return "", fmt.Errorf("unsupported verification type %q: %w", req.VerifyType, domain.ErrUnknownStrategy)
	}
	if err := validate.Identifier(kind, req.Identifier); err != nil {
		return "", err
	}
	code, err := s.ledger.Send(ctx, req.Identifier)
	if err != nil {
		return "", err
	}
	if err := s.notifier.SendCode(ctx, kind, req.Identifier, code); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyCode consumes a code for the given scene. A false result with a nil
// error means the code was wrong, expired or already used.
func (s *service) VerifyCode(ctx context.Context, req domain.VerifyCodeRequest) (bool, error) {
	scene, err := domain.ParseScene(req.VerifyType)
	if err != nil {
		return false, err
	}
	return s.ledger.Verify(ctx, req.Identifier, req.Credential, scene)
}
