package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "correct-horse-battery-staple-42"

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		id := uuid.New()
		u, err := NewUser(UserConfig{ID: id, Username: "tilt_master", PlainPassword: strongPassword})
		require.NoError(t, err)

		assert.Equal(t, id, u.ID)
		assert.Equal(t, "tilt_master", u.Username)
		assert.NotEqual(t, strongPassword, u.PasswordHash)
		assert.Zero(t, u.GamesWon)
		assert.True(t, u.VerifyPassword(strongPassword))
		assert.False(t, u.VerifyPassword("wrong"))
	})

	tests := []struct {
		name     string
		username string
		password string
		err      error
	}{
		{"short username", "ab", strongPassword, ErrUsernameTooShort},
		{"long username", strings.Repeat("a", 21), strongPassword, ErrUsernameTooLong},
		{"bad characters", "tilt master", strongPassword, ErrInvalidUsernameFormat},
		{"weak password", "tilt_master", "password", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(UserConfig{ID: uuid.New(), Username: tt.username, PlainPassword: tt.password})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewGuest(t *testing.T) {
	a, b := NewGuest(), NewGuest()

	assert.True(t, a.Guest)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.Username, guestPrefix))
	assert.False(t, a.VerifyPassword(""))
}
