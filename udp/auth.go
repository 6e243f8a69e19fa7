package udp

import "github.com/google/uuid"

// Authenticator checks the token a client sends in its hello record.
type Authenticator interface {
	Authenticate([]byte) (uuid.UUID, error)
}
