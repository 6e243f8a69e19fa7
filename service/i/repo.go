package i

import (
	"context"

	"github.com/beka-birhanu/tilt-maze/identity"
	"github.com/google/uuid"
)

// UserRepo defines the interface for user persistence operations.
type UserRepo interface {
	// Save inserts or updates a user in the repository.
	// If the user already exists, it updates the record. Otherwise, it creates a new one.
	Save(ctx context.Context, user *identity.User) error

	// ByID retrieves a user by their unique ID.
	// Returns identity.ErrUserNotFound if there is no such user.
	ByID(ctx context.Context, id uuid.UUID) (*identity.User, error)

	// ByUsername retrieves a user by their username.
	// Returns identity.ErrUserNotFound if there is no such user.
	ByUsername(ctx context.Context, username string) (*identity.User, error)

	// RecordWin increments the user's win counter. Unknown users are ignored.
	RecordWin(ctx context.Context, id uuid.UUID) error
}
