package identity

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the environment-driven Config implementation
type EnvConfig struct {
	ActivationSecret string        `env:"ACTIVATION_SECRET,notEmpty"`
	AccessSecret     string        `env:"ACCESS_TOKEN_SECRET,notEmpty"`
	RefreshSecret    string        `env:"REFRESH_TOKEN_SECRET,notEmpty"`
	Issuer           string        `env:"TOKEN_ISSUER" envDefault:"go-identity"`
	ActivationTTL    time.Duration `env:"ACTIVATION_TOKEN_TTL" envDefault:"5m"`
	AccessTTL        time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL       time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	TokenLookup      string        `env:"TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme       string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":3000"`
	DatabaseDSN      string        `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
}

var _ Config = (*EnvConfig)(nil)

// NewEnvConfig loads configuration from the environment
func NewEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetActivationSecret() string       { return c.ActivationSecret }
func (c *EnvConfig) GetAccessSecret() string           { return c.AccessSecret }
func (c *EnvConfig) GetRefreshSecret() string          { return c.RefreshSecret }
func (c *EnvConfig) GetIssuer() string                 { return c.Issuer }
func (c *EnvConfig) GetActivationTTL() time.Duration   { return c.ActivationTTL }
func (c *EnvConfig) GetAccessTTL() time.Duration       { return c.AccessTTL }
func (c *EnvConfig) GetRefreshTTL() time.Duration      { return c.RefreshTTL }
func (c *EnvConfig) GetTokenLookup() string            { return c.TokenLookup }
func (c *EnvConfig) GetAuthScheme() string             { return c.AuthScheme }
