package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-authix/internal/domain"
)

// Service delivers verification codes over the channel matching the strategy.
type Service interface {
	SendCode(ctx context.Context, kind domain.StrategyKind, identifier, code string) error
}

// SMSSender delivers a text message to an E.164 number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Mailer delivers a plain-text email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	sms    SMSSender
	mailer Mailer
	ttl    time.Duration
}

type ServiceDeps struct {
	SMSSender SMSSender
	Mailer    Mailer
	CodeTTL   time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{sms: deps.SMSSender, mailer: deps.Mailer, ttl: deps.CodeTTL}
}

func (s *service) SendCode(ctx context.Context, kind domain.StrategyKind, identifier, code string) error {
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	switch kind {
	case domain.StrategySMS:
		if s.sms == nil {
			slog.Warn("sms sender not configured, code not delivered", "to", identifier)
			return nil
		}
		if err := s.sms.SendSMS(ctx, identifier, body); err != nil {
			return fmt.Errorf("send sms: %w: %w", domain.ErrInfrastructure, err)
		}
	case domain.StrategyEmail:
		if s.mailer == nil {
			slog.Warn("mailer not configured, code not delivered", "to", identifier)
			return nil
		}
		if err := s.mailer.SendEmail(identifier, "Your verification code", body); err != nil {
			return fmt.Errorf("send email: %w: %w", domain.ErrInfrastructure, err)
		}
	default:
		return fmt.Errorf("no delivery channel for %q: %w", kind, domain.ErrUnknownStrategy)
	}
	return nil
}
