// Package gameapi provides the lobby and session endpoints.
package gameapi

// SessionInfoResponse tells a player where their world runs.
type SessionInfoResponse struct {
	SessionID string `json:"session_id"`
	WSPath    string `json:"ws_path,omitempty"`
	UDPAddr   string `json:"udp_addr,omitempty"`
}
