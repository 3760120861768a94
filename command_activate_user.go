package identity

import (
	"context"
	"crypto/subtle"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ActivateUserMessage struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
	OnResponse      func(resp *ActivateUserResponse)
}

func (e ActivateUserMessage) Type() string { return "user.activate" }

type ActivateUserResponse struct {
	User *User `json:"user"`
}

// ActivateUserHandler commits a pending registration. The token decode and
// code gate run before any directory access; the duplicate re-check narrows
// the window for token replay, and the directory's unique indexes close it.
type ActivateUserHandler struct {
	directory Directory
	codec     *TokenCodec
	logger    Logger
	sink      ActivitySink
}

func NewActivateUserHandler(directory Directory, codec *TokenCodec) *ActivateUserHandler {
	return &ActivateUserHandler{
		directory: directory,
		codec:     codec,
		logger:    defLogger{},
		sink:      noopActivitySink{},
	}
}

func (h *ActivateUserHandler) WithLogger(logger Logger) *ActivateUserHandler {
	h.logger = logger
	return h
}

func (h *ActivateUserHandler) WithActivitySink(sink ActivitySink) *ActivateUserHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *ActivateUserHandler) Execute(ctx context.Context, event ActivateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateUserHandler) execute(ctx context.Context, event ActivateUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.codec.Decode(event.ActivationToken, PurposeActivation)
	if err != nil {
		return err
	}

	if claims.Pending == nil {
		return ErrTokenInvalid
	}

	if subtle.ConstantTimeCompare([]byte(claims.Code), []byte(event.ActivationCode)) != 1 {
		return ErrCodeMismatch
	}

	// replay guard: a user may have been committed since the token was minted
	if _, err := h.directory.FindByEmail(ctx, claims.Pending.Email); err == nil {
		return ErrDuplicateEmail
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to re-check email uniqueness")
	}

	user, err := h.directory.Create(ctx, claims.Pending.AsUser())
	if err != nil {
		if IsDuplicateError(err) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventUserActivated,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&ActivateUserResponse{User: user})
	}

	return nil
}
