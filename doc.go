// Package identity implements a user-identity service core: stateless
// two-phase registration and activation, password-credential login, and a
// dual-token (access + refresh) session model.
//
// Registration and activation:
//   - Register never writes unconfirmed data to the directory. The pending
//     user record and a short numeric confirmation code travel inside a
//     signed activation token with a five minute lifetime; the code is
//     delivered out-of-band through a Notifier while the token goes back to
//     the caller. Activation decodes the token, matches the code, and only
//     then commits the user.
//   - Token reuse is not cryptographically prevented. The directory's unique
//     indexes on email and phone are the backstop for concurrent activations;
//     the in-flow duplicate checks are an optimization only.
//
// Sessions:
//   - Login mints an access token and a refresh token under separate purposes
//     and lifetimes. A failed login returns a soft result with a uniform
//     "Invalid email or password" message instead of an error, so callers
//     cannot tell a missing account from a wrong password.
//   - Logout clears the per-request session; issued tokens stay valid until
//     natural expiry. There is no server-side revocation list.
package identity
