package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-authix/internal/domain"
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_\-.@#$%^&*]{6,32}$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9_\-.@#$%^&*]{8,32}$`)
	e164Re     = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
	cnMobileRe = regexp.MustCompile(`^\+861[3-9][0-9]{9}$`)
)

// Struct validates the given struct using its validate tags.
// Failures are wrapped with domain.ErrValidation.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), domain.ErrValidation)
	}
	return nil
}

// Username checks the account-name character set and length.
func Username(s string) error {
	if !usernameRe.MatchString(s) {
		return fmt.Errorf("username must be 6-32 letters, digits or _-.@#$%%^&*: %w", domain.ErrValidation)
	}
	return nil
}

// Password checks the credential policy applied at registration.
func Password(s string) error {
	if !passwordRe.MatchString(s) {
		return fmt.Errorf("password must be 8-32 letters, digits or _-.@#$%%^&*: %w", domain.ErrValidation)
	}
	return nil
}

// Phone checks E.164 format. Mainland China numbers must also be a valid mobile number.
func Phone(s string) error {
	if !e164Re.MatchString(s) || v.Var(s, "e164") != nil {
		return fmt.Errorf("phone must be in E.164 format: %w", domain.ErrValidation)
	}
	if strings.HasPrefix(s, "+86") && !cnMobileRe.MatchString(s) {
		return fmt.Errorf("invalid +86 mobile number: %w", domain.ErrValidation)
	}
	return nil
}

func Email(s string) error {
	if err := v.Var(s, "required,email,max=254"); err != nil {
		return fmt.Errorf("invalid email address: %w", domain.ErrValidation)
	}
	return nil
}

// Identifier validates s against the rule for the given strategy.
func Identifier(kind domain.StrategyKind, s string) error {
	switch kind {
	case domain.StrategyPassword:
		return Username(s)
	case domain.StrategySMS:
		return Phone(s)
	case domain.StrategyEmail:
		return Email(s)
	}
	return fmt.Errorf("%q: %w", kind, domain.ErrUnknownStrategy)
}
