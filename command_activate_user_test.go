package identity_test

import (
	"context"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// registerForActivation runs the registration leg and returns the minted
// activation token together with the code delivered through the notifier.
func registerForActivation(t *testing.T, codec *identity.TokenCodec) (string, string) {
	t.Helper()

	directory := new(MockDirectory)
	directory.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, notFound())
	directory.On("FindByPhone", mock.Anything, mock.Anything).Return(nil, notFound())

	notifier := NewChanNotifier()
	handler := identity.NewRegisterUserHandler(directory, codec, notifier)

	var token string
	err := handler.Execute(context.Background(), identity.RegisterUserMessage{
		Name:     "Ann",
		Email:    "ann@x.com",
		Phone:    "5551234",
		Password: "longenough1",
		OnResponse: func(resp *identity.RegisterUserResponse) {
			token = resp.ActivationToken
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	select {
	case mail := <-notifier.Mail:
		return token, mail.Code
	case <-time.After(time.Second):
		t.Fatal("expected activation mail dispatch")
		return "", ""
	}
}

func TestActivateUser(t *testing.T) {
	ctx := context.Background()
	codec := identity.NewTokenCodec(newTestConfig())

	t.Run("Successful activation commits the pending user", func(t *testing.T) {
		token, code := registerForActivation(t, codec)

		directory := new(MockDirectory)
		directory.On("FindByEmail", mock.Anything, "ann@x.com").Return(nil, notFound()).Once()
		directory.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).
			Return(func(_ context.Context, user *identity.User) (*identity.User, error) {
				return user, nil
			}).Once()

		var res *identity.ActivateUserResponse
		err := identity.NewActivateUserHandler(directory, codec).Execute(ctx, identity.ActivateUserMessage{
			ActivationToken: token,
			ActivationCode:  code,
			OnResponse: func(resp *identity.ActivateUserResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		require.NotNil(t, res.User)
		assert.Equal(t, "Ann", res.User.Name)
		assert.Equal(t, "ann@x.com", res.User.Email)
		assert.NoError(t, identity.ComparePasswordAndHash("longenough1", res.User.PasswordHash))
		directory.AssertExpectations(t)
	})

	t.Run("Second activation of the same token is rejected", func(t *testing.T) {
		token, code := registerForActivation(t, codec)

		directory := new(MockDirectory)
		directory.On("FindByEmail", mock.Anything, "ann@x.com").
			Return(&identity.User{Email: "ann@x.com"}, nil).Once()

		err := identity.NewActivateUserHandler(directory, codec).Execute(ctx, identity.ActivateUserMessage{
			ActivationToken: token,
			ActivationCode:  code,
		})

		assert.Equal(t, identity.ErrDuplicateEmail, err)
		directory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Wrong confirmation code", func(t *testing.T) {
		token, code := registerForActivation(t, codec)

		wrong := "1000"
		if wrong == code {
			wrong = "1001"
		}

		directory := new(MockDirectory)
		err := identity.NewActivateUserHandler(directory, codec).Execute(ctx, identity.ActivateUserMessage{
			ActivationToken: token,
			ActivationCode:  wrong,
		})

		assert.Equal(t, identity.ErrCodeMismatch, err)
		directory.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		directory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Expired token", func(t *testing.T) {
		claims := &identity.TokenClaims{
			Pending: &identity.PendingUser{Email: "ann@x.com"},
			Code:    "1234",
		}
		token, err := codec.Encode(claims, identity.PurposeActivation, -time.Minute)
		require.NoError(t, err)

		directory := new(MockDirectory)
		err = identity.NewActivateUserHandler(directory, codec).Execute(ctx, identity.ActivateUserMessage{
			ActivationToken: token,
			ActivationCode:  "1234",
		})

		assert.Equal(t, identity.ErrTokenExpired, err)
		directory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Token signed with a foreign secret", func(t *testing.T) {
		other := newTestConfig()
		other.activationSecret = "some-other-secret"
		forged := identity.NewTokenCodec(other)
		token, err := forged.Encode(&identity.TokenClaims{
			Pending: &identity.PendingUser{Email: "ann@x.com"},
			Code:    "1234",
		}, identity.PurposeActivation, time.Minute)
		require.NoError(t, err)

		directory := new(MockDirectory)
		err = identity.NewActivateUserHandler(directory, codec).Execute(ctx, identity.ActivateUserMessage{
			ActivationToken: token,
			ActivationCode:  "1234",
		})

		assert.Equal(t, identity.ErrTokenInvalid, err)
		directory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Access token is not accepted as an activation token", func(t *testing.T) {
		token, err := codec.Encode(&identity.TokenClaims{
			Pending: &identity.PendingUser{Email: "ann@x.com"},
			Code:    "1234",
		}, identity.PurposeAccess, time.Minute)
		require.NoError(t, err)

		directory := new(MockDirectory)
		err = identity.NewActivateUserHandler(directory, codec).Execute(ctx, identity.ActivateUserMessage{
			ActivationToken: token,
			ActivationCode:  "1234",
		})

		assert.Equal(t, identity.ErrTokenInvalid, err)
		directory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
