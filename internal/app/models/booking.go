package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingType describes how a seat was paid for
type BookingType string

const (
	BookingSubscription BookingType = "subscription"
	BookingSingle       BookingType = "single"
	BookingDropIn       BookingType = "drop_in"
)

// BookingStatus is the state of a booking
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a member's reservation for a course
type Booking struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	UserID         uuid.UUID     `json:"userId" db:"user_id"`
	CourseID       uuid.UUID     `json:"courseId" db:"course_id"`
	SubscriptionID *uuid.UUID    `json:"subscriptionId,omitempty" db:"subscription_id"`
	BookingType    BookingType   `json:"bookingType" db:"booking_type"`
	Status         BookingStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	CancelledAt    *time.Time    `json:"cancelledAt,omitempty" db:"cancelled_at"`

	Course *Course `json:"course,omitempty"`
}
