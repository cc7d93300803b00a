// internal/auth/tokens.go
//
// Credential types issued by the auth service.
//
// Context
// -------
// The console never verifies passwords itself.  `POST /users/auth` on the
// auth service returns a token pair and the user record; the console keeps
// both in a Store (per browser session, or a file for the CLI) and attaches
// the access token to every backend call through Transport.

package auth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the auth service
	// rejects the login/password pair.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrSessionExpired means the refresh token was refused.  The store has
	// been cleared and the user must log in again.
	ErrSessionExpired = errors.New("auth: session expired")

	// ErrNotLoggedIn is returned when a store holds no credentials.
	ErrNotLoggedIn = errors.New("auth: not logged in")
)

// Tokens is the bearer pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// User is the authenticated principal as the auth service describes it.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Role     string  `json:"role"`
}

// Credentials is what a Store holds.
type Credentials struct {
	Tokens Tokens `json:"tokens"`
	User   User   `json:"user"`
}

// Valid reports whether c carries an access token.
func (c Credentials) Valid() bool { return c.Tokens.AccessToken != "" }
