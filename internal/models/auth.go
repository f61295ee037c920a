package models

import "github.com/golang-jwt/jwt/v5"

// SessionRole represents the actor role carried by a session token.
type SessionRole string

const (
	RoleStudent SessionRole = "STUDENT"
	RoleAdmin   SessionRole = "ADMIN"
)

// SignInRequest holds the sign-in payload. Students authenticate with the
// email + student id pair; the admin account with email + password.
type SignInRequest struct {
	Email     string `json:"email" validate:"required,email"`
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

// SignInResponse returns the issued session token.
type SignInResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	Role        SessionRole `json:"role"`
	StudentID   string      `json:"student_id,omitempty"`
}

// SessionClaims is the typed session context passed into every protected
// route: the actor role, plus the student id for student sessions.
type SessionClaims struct {
	Role      SessionRole `json:"role"`
	StudentID string      `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}
