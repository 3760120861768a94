package identity_test

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/mock"
)

// MockDirectory implements identity.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	var user *identity.User
	if u := args.Get(0); u != nil {
		user = u.(*identity.User)
	}
	return user, args.Error(1)
}

func (m *MockDirectory) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	args := m.Called(ctx, phone)
	var user *identity.User
	if u := args.Get(0); u != nil {
		user = u.(*identity.User)
	}
	return user, args.Error(1)
}

func (m *MockDirectory) Create(ctx context.Context, user *identity.User) (*identity.User, error) {
	args := m.Called(ctx, user)
	var created *identity.User
	switch v := args.Get(0).(type) {
	case func(context.Context, *identity.User) (*identity.User, error):
		return v(ctx, user)
	case *identity.User:
		created = v
	}
	return created, args.Error(1)
}

func (m *MockDirectory) List(ctx context.Context) ([]*identity.User, error) {
	args := m.Called(ctx)
	var records []*identity.User
	if r := args.Get(0); r != nil {
		records = r.([]*identity.User)
	}
	return records, args.Error(1)
}

// ChanNotifier captures dispatched mail so tests can wait on the async send
type ChanNotifier struct {
	Mail chan identity.ActivationMail
}

func NewChanNotifier() *ChanNotifier {
	return &ChanNotifier{Mail: make(chan identity.ActivationMail, 1)}
}

func (n *ChanNotifier) Send(_ context.Context, msg identity.ActivationMail) error {
	n.Mail <- msg
	return nil
}

// testConfig implements identity.Config
type testConfig struct {
	activationSecret string
	accessSecret     string
	refreshSecret    string
	issuer           string
	activationTTL    time.Duration
	accessTTL        time.Duration
	refreshTTL       time.Duration
}

func newTestConfig() *testConfig {
	return &testConfig{
		activationSecret: "activation-secret",
		accessSecret:     "access-secret",
		refreshSecret:    "refresh-secret",
		issuer:           "identity-test",
		activationTTL:    5 * time.Minute,
		accessTTL:        15 * time.Minute,
		refreshTTL:       168 * time.Hour,
	}
}

func (c *testConfig) GetActivationSecret() string     { return c.activationSecret }
func (c *testConfig) GetAccessSecret() string         { return c.accessSecret }
func (c *testConfig) GetRefreshSecret() string        { return c.refreshSecret }
func (c *testConfig) GetIssuer() string               { return c.issuer }
func (c *testConfig) GetActivationTTL() time.Duration { return c.activationTTL }
func (c *testConfig) GetAccessTTL() time.Duration     { return c.accessTTL }
func (c *testConfig) GetRefreshTTL() time.Duration    { return c.refreshTTL }
func (c *testConfig) GetTokenLookup() string          { return "header:Authorization" }
func (c *testConfig) GetAuthScheme() string           { return "Bearer" }

func notFound() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound)
}
