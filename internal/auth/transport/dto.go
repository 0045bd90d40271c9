package transport

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=200"`
	Password string `json:"password" validate:"required,max=200"`
}

// LoginResponse confirms a successful login. The token travels in the cookie.
type LoginResponse struct {
	Success bool `json:"success"`
}

// MeResponse describes the signed-in operator.
type MeResponse struct {
	Username string `json:"username"`
}
