package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthUser is the credential record owned by the identity provider adapter
type AuthUser struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	EmailConfirmedAt *time.Time `json:"emailConfirmedAt,omitempty" db:"email_confirmed_at"`
	IsActive         bool       `json:"isActive" db:"is_active"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	LastSignInAt     *time.Time `json:"lastSignInAt,omitempty" db:"last_sign_in_at"`
}

// Profile is the studio-side member record
type Profile struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	Email              string             `json:"email" db:"email"`
	FullName           string             `json:"fullName" db:"full_name"`
	Phone              *string            `json:"phone,omitempty" db:"phone"`
	Role               Role               `json:"role" db:"role"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the profile may use the admin console
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
