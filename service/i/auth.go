package i

import (
	"context"

	"github.com/beka-birhanu/tilt-maze/identity"
	"github.com/google/uuid"
)

// PlayerAuthenticator an interface for authenticating the client token
type PlayerAuthenticator interface {
	Authenticate([]byte) (uuid.UUID, error)
}

// Authenticator registers users and issues their tokens.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	SignIn(ctx context.Context, username, password string) (*identity.User, string, error)
	// Guest issues a token for a throwaway identity that is never stored.
	Guest() (*identity.User, string, error)
}
