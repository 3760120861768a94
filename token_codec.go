package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenPurpose namespaces a signed token to one specific use. Each purpose
// signs with its own secret, so a token minted for one purpose never decodes
// under another even when the payload shape matches.
type TokenPurpose string

const (
	PurposeActivation TokenPurpose = "activation"
	PurposeAccess     TokenPurpose = "access"
	PurposeRefresh    TokenPurpose = "refresh"
)

// TokenClaims is the payload the codec signs. Activation tokens carry the
// pending user and confirmation code; session tokens carry the user identity.
type TokenClaims struct {
	jwt.RegisteredClaims
	Purpose string       `json:"prp,omitempty"`
	UID     string       `json:"uid,omitempty"`
	Email   string       `json:"email,omitempty"`
	Pending *PendingUser `json:"pending,omitempty"`
	Code    string       `json:"code,omitempty"`
}

// UserID returns the user ID carried by a session token
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// TokenCodec encodes and decodes tamper-evident, expiring tokens. Encode and
// Decode are pure and stateless, safe for unlimited concurrent use.
type TokenCodec struct {
	secrets map[TokenPurpose][]byte
	issuer  string
	logger  Logger
}

// NewTokenCodec creates a codec with one signing secret per purpose
func NewTokenCodec(cfg Config) *TokenCodec {
	return &TokenCodec{
		secrets: map[TokenPurpose][]byte{
			PurposeActivation: []byte(cfg.GetActivationSecret()),
			PurposeAccess:     []byte(cfg.GetAccessSecret()),
			PurposeRefresh:    []byte(cfg.GetRefreshSecret()),
		},
		issuer: cfg.GetIssuer(),
		logger: defLogger{},
	}
}

func (tc *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	tc.logger = logger
	return tc
}

// Encode serializes the claims, stamps issuance metadata and expiry, and
// signs with the secret bound to purpose
func (tc *TokenCodec) Encode(claims *TokenClaims, purpose TokenPurpose, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	secret, ok := tc.secrets[purpose]
	if !ok || len(secret) == 0 {
		return "", errors.New("no signing secret for token purpose", errors.CategoryInternal).
			WithMetadata(map[string]any{"purpose": string(purpose)})
	}

	now := time.Now()
	claims.Purpose = string(purpose)
	claims.RegisteredClaims.Issuer = tc.issuer
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.RegisteredClaims.ID == "" {
		claims.RegisteredClaims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode parses and validates a token under the given purpose. It fails with
// ErrTokenExpired once expiry elapses regardless of signature validity, and
// with ErrTokenInvalid for any signature, structure, or purpose mismatch.
func (tc *TokenCodec) Decode(tokenString string, purpose TokenPurpose) (*TokenClaims, error) {
	secret, ok := tc.secrets[purpose]
	if !ok || len(secret) == 0 {
		return nil, errors.New("no signing secret for token purpose", errors.CategoryInternal).
			WithMetadata(map[string]any{"purpose": string(purpose)})
	}

	parserOptions := make([]jwt.ParserOption, 0, 1)
	if tc.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tc.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("TokenCodec decode encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		tc.logger.Error("TokenCodec decode could not map claims")
		return nil, ErrTokenInvalid
	}

	if claims.Purpose != string(purpose) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
