package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/tilt-maze/identity"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/google/uuid"
)

const (
	defaultTokenLifetime = 24 * time.Hour
	guestTokenLifetime   = 2 * time.Hour

	UserIDClaim   = "userID"
	UsernameClaim = "username"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Auth registers users and signs them in.
type Auth struct {
	userRepo  i.UserRepo
	tokenizer i.Tokenizer
}

// NewAuth creates an Auth service.
func NewAuth(userRepo i.UserRepo, tokenizer i.Tokenizer) *Auth {
	return &Auth{
		userRepo:  userRepo,
		tokenizer: tokenizer,
	}
}

// Register creates a new user account.
func (a *Auth) Register(ctx context.Context, username, password string) error {
	if _, err := a.userRepo.ByUsername(ctx, username); err == nil {
		return identity.ErrUsernameConflict
	} else if !errors.Is(err, identity.ErrUserNotFound) {
		return err
	}

	userConfig := identity.UserConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	}

	user, err := identity.NewUser(userConfig)
	if err != nil {
		return err
	}

	return a.userRepo.Save(ctx, user)
}

// SignIn checks the credentials and returns the user with a fresh token.
func (a *Auth) SignIn(ctx context.Context, username, password string) (*identity.User, string, error) {
	user, err := a.userRepo.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.token(user, defaultTokenLifetime)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Guest returns a short-lived token for an anonymous player.
func (a *Auth) Guest() (*identity.User, string, error) {
	user := identity.NewGuest()
	token, err := a.token(user, guestTokenLifetime)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (a *Auth) token(user *identity.User, lifetime time.Duration) (string, error) {
	token, err := a.tokenizer.Generate(map[string]interface{}{
		UserIDClaim:   user.ID.String(),
		UsernameClaim: user.Username,
	}, lifetime)
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return token, nil
}

// UserIDFromClaims extracts the user id a token was issued for.
func UserIDFromClaims(claims map[string]interface{}) (uuid.UUID, error) {
	raw, ok := claims[UserIDClaim].(string)
	if !ok {
		return uuid.Nil, errors.New("token has no user id")
	}
	return uuid.Parse(raw)
}
