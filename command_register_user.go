package identity

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ActivationTokenTTL is the lifetime of an activation token
var ActivationTokenTTL = 5 * time.Minute

type RegisterUserMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone_number"`
	Password   string `json:"password"`
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	// ActivationToken goes back to the caller. The confirmation code inside
	// it is delivered only through the Notifier, so completing activation
	// requires possession of both channels.
	ActivationToken string `json:"activation_token"`
}

// RegisterUserHandler runs the registration leg of the activation flow. No
// directory write happens here; the pending record leaves only inside the
// signed token.
type RegisterUserHandler struct {
	directory Directory
	codec     *TokenCodec
	notifier  Notifier
	ttl       time.Duration
	logger    Logger
	sink      ActivitySink
}

func NewRegisterUserHandler(directory Directory, codec *TokenCodec, notifier Notifier) *RegisterUserHandler {
	return &RegisterUserHandler{
		directory: directory,
		codec:     codec,
		notifier:  notifier,
		ttl:       ActivationTokenTTL,
		logger:    defLogger{},
		sink:      noopActivitySink{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	h.logger = logger
	return h
}

func (h *RegisterUserHandler) WithTokenTTL(ttl time.Duration) *RegisterUserHandler {
	if ttl > 0 {
		h.ttl = ttl
	}
	return h
}

func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// email first, then phone; both checked before any token is minted
	if _, err := h.directory.FindByEmail(ctx, event.Email); err == nil {
		return ErrDuplicateEmail
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	}

	phone := NormalizePhone(event.Phone)
	if _, err := h.directory.FindByPhone(ctx, phone); err == nil {
		return ErrDuplicatePhone
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check phone uniqueness")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	code, err := NewConfirmationCode()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate confirmation code")
	}

	claims := &TokenClaims{
		Pending: &PendingUser{
			Name:         event.Name,
			Email:        event.Email,
			Phone:        phone,
			PasswordHash: hash,
		},
		Code: code,
	}

	token, err := h.codec.Encode(claims, PurposeActivation, h.ttl)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode activation token")
	}

	// best-effort dispatch: a delivery failure is logged, never surfaced to
	// the registering caller
	go func() {
		mail := ActivationMail{
			RecipientEmail: event.Email,
			RecipientName:  event.Name,
			Code:           code,
			Template:       ActivationMailTemplate,
		}
		if err := h.notifier.Send(context.WithoutCancel(ctx), mail); err != nil {
			h.logger.Warn("activation mail dispatch failed for %s: %v", event.Email, err)
		}
	}()

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventUserRegistered,
		Email:     event.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{ActivationToken: token})
	}

	return nil
}

// NewConfirmationCode returns a 4-digit numeric string in [1000, 9999]
func NewConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return big.NewInt(1000 + n.Int64()).String(), nil
}
