package identity

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrDuplicateEmail is returned when the directory already holds the email
var ErrDuplicateEmail = errors.New("Email already exist", errors.CategoryConflict).
	WithTextCode("DUPLICATE_EMAIL")

// ErrDuplicatePhone is returned when the directory already holds the phone number
var ErrDuplicatePhone = errors.New("Phone number already exist", errors.CategoryConflict).
	WithTextCode("DUPLICATE_PHONE")

// ErrCodeMismatch is returned when the supplied confirmation code does not
// match the one embedded in the activation token
var ErrCodeMismatch = errors.New("Invalid activation code", errors.CategoryValidation).
	WithTextCode("CODE_MISMATCH")

// ErrTokenExpired signals a token past its expiry, regardless of signature
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenInvalid signals a token that failed signature or structural checks.
// Callers surface it as a generic activation failure, never distinguishing it
// from tampering specifics.
var ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
	WithTextCode("TOKEN_INVALID")

// ErrUnauthenticated is the gate rejection for protected operations
var ErrUnauthenticated = errors.New("unauthenticated", errors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is returned for password verification failures
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth)

// ErrNoEmptyString rejects empty plaintext passwords
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation)

// InvalidCredentialsMessage is the uniform soft-failure message for login.
// The same string covers both unknown email and wrong password.
const InvalidCredentialsMessage = "Invalid email or password"

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsDuplicateError reports whether err maps to either uniqueness conflict
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicatePhone)
}
