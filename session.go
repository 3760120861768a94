package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// SessionResult is the login outcome. Credential failures are soft: Error
// carries the uniform message and no error value is returned, so callers
// cannot distinguish an unknown email from a wrong password.
type SessionResult struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Authenticated reports whether the result carries a usable session
func (r *SessionResult) Authenticated() bool {
	return r != nil && r.Error == "" && r.User != nil
}

// SessionIssuer verifies credentials and mints the access/refresh token
// pair, each under its own purpose and lifetime.
type SessionIssuer struct {
	directory  Directory
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
	sink       ActivitySink
}

func NewSessionIssuer(directory Directory, codec *TokenCodec, cfg Config) *SessionIssuer {
	return &SessionIssuer{
		directory:  directory,
		codec:      codec,
		accessTTL:  cfg.GetAccessTTL(),
		refreshTTL: cfg.GetRefreshTTL(),
		logger:     defLogger{},
		sink:       noopActivitySink{},
	}
}

func (s *SessionIssuer) WithLogger(logger Logger) *SessionIssuer {
	s.logger = logger
	return s
}

func (s *SessionIssuer) WithActivitySink(sink ActivitySink) *SessionIssuer {
	s.sink = normalizeActivitySink(sink)
	return s
}

// Login verifies the email/password pair against the directory. The returned
// error covers infrastructure failures only; bad credentials come back as a
// soft result.
func (s *SessionIssuer) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			recordActivity(ctx, s.sink, s.logger, ActivityEvent{
				EventType: ActivityEventLoginFailure,
				Email:     email,
			})
			return invalidCredentials(), nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			recordActivity(ctx, s.sink, s.logger, ActivityEvent{
				EventType: ActivityEventLoginFailure,
				Email:     email,
			})
			return invalidCredentials(), nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify password")
	}

	access, err := s.Mint(user, PurposeAccess)
	if err != nil {
		return nil, err
	}

	refresh, err := s.Mint(user, PurposeRefresh)
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, s.sink, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	return &SessionResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Mint issues a session token for the user under the given purpose
func (s *SessionIssuer) Mint(user *User, purpose TokenPurpose) (string, error) {
	ttl := s.accessTTL
	if purpose == PurposeRefresh {
		ttl = s.refreshTTL
	}

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID.String(),
		},
		UID:   user.ID.String(),
		Email: user.Email,
	}

	token, err := s.codec.Encode(claims, purpose, ttl)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint session token")
	}

	return token, nil
}

func invalidCredentials() *SessionResult {
	return &SessionResult{Error: InvalidCredentialsMessage}
}
