package udp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"net"

	"github.com/google/uuid"
)

const (
	sessionKeySize  = 16
	sessionIDLength = sha256.Size + sessionKeySize
)

// SessionManager a struct to manage sessions secrets
type SessionManager struct {
	sHMACKey []byte // session random key
}

// NewSessionManager returns a new session manager with a fresh random secret.
func NewSessionManager() (*SessionManager, error) {
	sessionHMAC := make([]byte, 32)
	if _, err := rand.Read(sessionHMAC); err != nil {
		return nil, err
	}
	return &SessionManager{sHMACKey: sessionHMAC}, nil
}

// GetSessionHMAC generates a session HMAC with the params
func (s *SessionManager) GetSessionHMAC(params ...[]byte) []byte {
	mac := hmac.New(sha256.New, s.sHMACKey)
	for _, p := range params {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

// GenerateSessionID generate a new random session ID for the address & the user ID
func (s *SessionManager) GenerateSessionID(addr *net.UDPAddr, userID uuid.UUID) ([]byte, error) {
	sessionKey := make([]byte, sessionKeySize)
	if _, err := rand.Read(sessionKey); err != nil {
		return nil, err
	}
	return append(s.GetSessionHMAC(addr.IP, []byte(userID.String())), sessionKey...), nil
}

// SessionIDEqual compares session IDs in constant time.
func SessionIDEqual(a, b []byte) bool {
	return hmac.Equal(a, b)
}
