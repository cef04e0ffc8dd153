package ports

import (
	"context"

	"audiohub-backend/domain/entities"
)

// AuthTokens is the token set returned by a successful authentication.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int32  `json:"expires_in"`
}

// IdentityProvider is the external system of record for credentials.
// This service never stores or verifies passwords itself.
type IdentityProvider interface {
	// SignUp registers a new identity with a permanent password and
	// role group membership. Returns the identity ID.
	SignUp(ctx context.Context, email, password, fullName, role string) (string, error)

	// Authenticate verifies credentials and returns tokens. Failures
	// map to the error taxonomy (UNAUTHORIZED, NOT_FOUND, FORBIDDEN).
	Authenticate(ctx context.Context, email, password string) (*AuthTokens, error)

	// Describe fetches the identity's attributes.
	Describe(ctx context.Context, username string) (entities.IdentityAttributes, error)

	// Delete removes the identity. Used to roll back a registration
	// whose local record could not be created.
	Delete(ctx context.Context, username string) error
}
