package i

import (
	"context"

	"github.com/google/uuid"
)

// SessionInfo tells a player which world they are in and where to connect.
type SessionInfo struct {
	SessionID uuid.UUID
	WSPath    string
	UDPAddr   string
}

// GameSessionManager manages game sessions and provides session-related information.
type GameSessionManager interface {
	NewSession(playerIDs []uuid.UUID)
	SessionInfo(context.Context, uuid.UUID) (SessionInfo, error)
}
