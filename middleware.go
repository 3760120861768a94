package identity

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// DefaultSessionKey is the fiber locals key the gate stores sessions under
const DefaultSessionKey = "session"

// RefreshTokenHeader is where the request carrier supplies the caller's
// refresh token copy. The gate attaches it untouched; only the access token
// is verified.
const RefreshTokenHeader = "refreshtoken"

// GateConfig configures the auth gate middleware
type GateConfig struct {
	Codec        *TokenCodec
	Directory    Directory
	TokenLookup  string
	AuthScheme   string
	ContextKey   string
	ErrorHandler func(c *fiber.Ctx, err error) error
	Logger       Logger
}

// Protected rejects unauthenticated calls before the wrapped handler runs.
// It extracts the access token from the carried credentials, decodes it
// under the access purpose, resolves the identity through the directory, and
// attaches an immutable RequestSession to the request.
func Protected(config ...GateConfig) fiber.Handler {
	cfg := gateDefaults(config...)

	return func(c *fiber.Ctx) error {
		raw, err := extractRawToken(c, cfg.getExtractors())
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Codec.Decode(raw, PurposeAccess)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		user, err := cfg.resolveUser(c, claims)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		session := &RequestSession{
			User:         user,
			AccessToken:  raw,
			RefreshToken: c.Get(RefreshTokenHeader),
		}

		c.Locals(cfg.ContextKey, session)
		c.SetUserContext(WithSession(c.UserContext(), session))

		return c.Next()
	}
}

// GetSession returns the RequestSession the gate attached to the request
func GetSession(c *fiber.Ctx, key ...string) (*RequestSession, error) {
	k := DefaultSessionKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}

	raw := c.Locals(k)
	if raw == nil {
		return nil, ErrUnauthenticated
	}

	session, ok := raw.(*RequestSession)
	if !ok || session == nil {
		return nil, ErrUnauthenticated
	}

	return session, nil
}

// ClearRequestSession drops identity and token material from the request.
// Always succeeds; issued tokens remain valid until they expire.
func ClearRequestSession(c *fiber.Ctx, key ...string) {
	k := DefaultSessionKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}

	c.Locals(k, (*RequestSession)(nil))
	c.SetUserContext(ClearSession(c.UserContext()))
}

func gateDefaults(config ...GateConfig) GateConfig {
	var cfg GateConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Codec == nil {
		panic("IDENTITY: gate configuration: Codec is required.")
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultSessionKey
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			if err.Error() == ErrJWTMissingOrMalformed.Error() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": ErrJWTMissingOrMalformed.Error(),
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrUnauthenticated.Message,
			})
		}
	}

	return cfg
}

func (cfg *GateConfig) resolveUser(c *fiber.Ctx, claims *TokenClaims) (*User, error) {
	if cfg.Directory == nil {
		return nil, ErrUnauthenticated
	}

	user, err := cfg.Directory.FindByEmail(c.UserContext(), claims.Email)
	if err != nil {
		cfg.Logger.Error("gate failed to resolve token identity %s: %v", claims.Email, err)
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// tokenExtractor pulls a raw token out of the request
type tokenExtractor func(c *fiber.Ctx) (string, error)

func (cfg *GateConfig) getExtractors() []tokenExtractor {
	return getExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func extractRawToken(c *fiber.Ctx, extractors []tokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrJWTMissingOrMalformed
	}

	return raw, err
}

// getExtractors parses a lookup spec in the form
// "header:Authorization,cookie:access_token,query:access_token"
func getExtractors(tokenLookup string, authSchemes ...string) []tokenExtractor {
	extractors := make([]tokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) < 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

func tokenFromHeader(header string, authScheme string) tokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func tokenFromQuery(param string) tokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromCookie(name string) tokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
