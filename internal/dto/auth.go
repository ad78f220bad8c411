package dto

// LoginRequest carries admin credentials for provider sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the session token issued after the admin gate.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	UserType  string `json:"user_type"`
}

// SessionResponse echoes the authenticated session for GET /auth/session.
type SessionResponse struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}
