package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the review state of a member verification
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "none"
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// VerificationRequest is a member's request to have their account verified by staff
type VerificationRequest struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      uuid.UUID          `json:"userId" db:"user_id"`
	Kind        string             `json:"kind" db:"kind"`
	Note        *string            `json:"note,omitempty" db:"note"`
	Status      VerificationStatus `json:"status" db:"status"`
	SubmittedAt time.Time          `json:"submittedAt" db:"submitted_at"`
	ReviewedAt  *time.Time         `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewerID  *uuid.UUID         `json:"reviewerId,omitempty" db:"reviewer_id"`

	MemberName  string `json:"memberName,omitempty"`
	MemberEmail string `json:"memberEmail,omitempty"`
}
