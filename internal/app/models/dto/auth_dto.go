package dto

import (
	"time"

	"github.com/yigit/dancestudio/internal/pkg/auth"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a member sign-up
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	FullName string  `json:"fullName" binding:"required,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
}

// MagicLinkRequest asks for a sign-in link by email
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse  `json:"token"`
	User  *auth.Identity `json:"user"`
}

// RegisterResponse is returned after sign-up; the session starts after email confirmation
type RegisterResponse struct {
	User    *auth.Identity `json:"user"`
	Message string         `json:"message"`
}

// PasswordRecoveryRequest asks for a password reset link
type PasswordRecoveryRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdatePasswordRequest sets a new password for the signed-in member
type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// NewTokenResponse converts an issued token pair into the response body
func NewTokenResponse(pair *auth.TokenPair, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(pair.AccessExpiresAt.Sub(now).Seconds()),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: int64(pair.RefreshExpiresAt.Sub(now).Seconds()),
	}
}
