package identity

// AuthRequest is the body of register and login calls.
type AuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on login and for guests.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	GamesWon int    `json:"games_won"`
	Guest    bool   `json:"guest,omitempty"`
	Token    string `json:"token"`
}
