package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	Username string `json:"username,omitempty"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ResumeRequest is the request body for resuming a guest identity
type ResumeRequest struct {
	PlayerID string `json:"player_id"`
}

// CreateWorldRequest is the request body for creating a world
type CreateWorldRequest struct {
	Name string `json:"name"`
}

// JoinRequest is the request body for joining a world
type JoinRequest struct {
	Locale string `json:"locale,omitempty"`
}

// MoveRequest is the request body for moving one step
type MoveRequest struct {
	Direction string `json:"direction"`
}

// AutoplayRequest is the request body for autoplaying a turn
type AutoplayRequest struct {
	Strategy string `json:"strategy,omitempty"`
}
