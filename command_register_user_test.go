package identity_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	codec := identity.NewTokenCodec(newTestConfig())

	t.Run("Successful registration", func(t *testing.T) {
		directory := new(MockDirectory)
		notifier := NewChanNotifier()
		handler := identity.NewRegisterUserHandler(directory, codec, notifier)

		directory.On("FindByEmail", mock.Anything, "ann@x.com").Return(nil, notFound()).Once()
		directory.On("FindByPhone", mock.Anything, mock.AnythingOfType("string")).Return(nil, notFound()).Once()

		var res *identity.RegisterUserResponse
		err := handler.Execute(ctx, identity.RegisterUserMessage{
			Name:     "Ann",
			Email:    "ann@x.com",
			Phone:    "5551234",
			Password: "longenough1",
			OnResponse: func(resp *identity.RegisterUserResponse) {
				res = resp
			},
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		require.NotEmpty(t, res.ActivationToken)

		// the token round-trips to the pending record; nothing was persisted
		claims, err := codec.Decode(res.ActivationToken, identity.PurposeActivation)
		require.NoError(t, err)
		require.NotNil(t, claims.Pending)
		assert.Equal(t, "Ann", claims.Pending.Name)
		assert.Equal(t, "ann@x.com", claims.Pending.Email)
		assert.NoError(t, identity.ComparePasswordAndHash("longenough1", claims.Pending.PasswordHash))
		assert.Regexp(t, codePattern, claims.Code)

		// the notifier receives the code out-of-band, never the token
		select {
		case mail := <-notifier.Mail:
			assert.Equal(t, "ann@x.com", mail.RecipientEmail)
			assert.Equal(t, "Ann", mail.RecipientName)
			assert.Equal(t, claims.Code, mail.Code)
			assert.Equal(t, identity.ActivationMailTemplate, mail.Template)
		case <-time.After(time.Second):
			t.Fatal("expected activation mail dispatch")
		}

		directory.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		directory.AssertExpectations(t)
	})

	t.Run("Duplicate email fails before any token is minted", func(t *testing.T) {
		directory := new(MockDirectory)
		notifier := NewChanNotifier()
		handler := identity.NewRegisterUserHandler(directory, codec, notifier)

		existing := &identity.User{Email: "ann@x.com"}
		directory.On("FindByEmail", mock.Anything, "ann@x.com").Return(existing, nil).Once()

		responded := false
		err := handler.Execute(ctx, identity.RegisterUserMessage{
			Name:     "Ann",
			Email:    "ann@x.com",
			Phone:    "5551234",
			Password: "longenough1",
			OnResponse: func(resp *identity.RegisterUserResponse) {
				responded = true
			},
		})

		assert.Equal(t, identity.ErrDuplicateEmail, err)
		assert.False(t, responded)
		assert.Empty(t, notifier.Mail)

		directory.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
		directory.AssertExpectations(t)
	})

	t.Run("Duplicate phone", func(t *testing.T) {
		directory := new(MockDirectory)
		notifier := NewChanNotifier()
		handler := identity.NewRegisterUserHandler(directory, codec, notifier)

		directory.On("FindByEmail", mock.Anything, "ann@x.com").Return(nil, notFound()).Once()
		directory.On("FindByPhone", mock.Anything, mock.AnythingOfType("string")).
			Return(&identity.User{Phone: "5551234"}, nil).Once()

		err := handler.Execute(ctx, identity.RegisterUserMessage{
			Name:     "Ann",
			Email:    "ann@x.com",
			Phone:    "5551234",
			Password: "longenough1",
		})

		assert.Equal(t, identity.ErrDuplicatePhone, err)
		assert.Empty(t, notifier.Mail)
		directory.AssertExpectations(t)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		directory := new(MockDirectory)
		handler := identity.NewRegisterUserHandler(directory, codec, NewChanNotifier())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := handler.Execute(cancelled, identity.RegisterUserMessage{
			Name:     "Ann",
			Email:    "ann@x.com",
			Phone:    "5551234",
			Password: "longenough1",
		})

		assert.Error(t, err)
		directory.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestNewConfirmationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := identity.NewConfirmationCode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
	}
}
