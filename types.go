package identity

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Directory is the durable store of confirmed user identities. Its unique
// indexes on email and phone are the source of truth for uniqueness; any
// duplicate check done before Create is an optimization only.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// Notifier delivers the activation code out-of-band. Dispatch is best-effort
// from the registration flow's perspective.
type Notifier interface {
	Send(ctx context.Context, msg ActivationMail) error
}

// ActivationMail carries the confirmation code to the pending user. The
// activation token itself is never mailed.
type ActivationMail struct {
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	Code           string `json:"code"`
	Template       string `json:"template"`
}

// Config holds identity service options
type Config interface {
	GetActivationSecret() string
	GetAccessSecret() string
	GetRefreshSecret() string
	GetIssuer() string
	GetActivationTTL() time.Duration
	GetAccessTTL() time.Duration
	GetRefreshTTL() time.Duration
	GetTokenLookup() string
	GetAuthScheme() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
