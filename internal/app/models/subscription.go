package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionType is the kind of pass a member holds
type SubscriptionType string

const (
	SubscriptionMonthly SubscriptionType = "monthly"
	SubscriptionFive    SubscriptionType = "5_times"
	SubscriptionTen     SubscriptionType = "10_times"
)

// Unlimited reports whether the pass has no credit limit
func (t SubscriptionType) Unlimited() bool {
	return t == SubscriptionMonthly
}

// Subscription is a member's pass with its externally computed balance
type Subscription struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	UserID           uuid.UUID        `json:"userId" db:"user_id"`
	Type             SubscriptionType `json:"type" db:"type"`
	RemainingCredits *int             `json:"remainingCredits,omitempty" db:"remaining_credits"`
	StartsAt         time.Time        `json:"startsAt" db:"starts_at"`
	ExpiresAt        *time.Time       `json:"expiresAt,omitempty" db:"expires_at"`
	IsActive         bool             `json:"isActive" db:"is_active"`
}
