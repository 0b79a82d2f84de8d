package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkin records attendance; rows are only created by the check-in procedure
type Checkin struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	CourseID    uuid.UUID   `json:"courseId" db:"course_id"`
	BookingType BookingType `json:"bookingType" db:"booking_type"`
	CheckedInAt time.Time   `json:"checkedInAt" db:"checked_in_at"`

	MemberName string `json:"memberName,omitempty"`
}
