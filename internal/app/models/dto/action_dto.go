package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/dancestudio/internal/app/models"
)

// ActionResult is the outcome every member or admin action reports.
// Field names follow the JSON the remote procedures return.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Failed builds a failed result with a member-facing message
func Failed(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}

// Settle fills an empty failure message with the operation fallback
func (r *ActionResult) Settle(fallback string) {
	if !r.Success && r.Message == "" {
		r.Message = fallback
	}
}

// Outcome exposes the embedded result of any action result type
func (r *ActionResult) Outcome() *ActionResult {
	return r
}

// BookCourseResult is returned by book_course
type BookCourseResult struct {
	ActionResult
	BookingID       *uuid.UUID          `json:"booking_id,omitempty"`
	BookingType     *models.BookingType `json:"booking_type,omitempty"`
	CurrentCapacity *int                `json:"current_capacity,omitempty"`
	MaxCapacity     *int                `json:"max_capacity,omitempty"`
}

// CheckinResult is returned by perform_course_checkin
type CheckinResult struct {
	ActionResult
	CheckinID         *uuid.UUID          `json:"checkin_id,omitempty"`
	BookingType       *models.BookingType `json:"booking_type,omitempty"`
	CurrentAttendance *int                `json:"current_attendance,omitempty"`
	Capacity          *int                `json:"capacity,omitempty"`
	Remaining         *int                `json:"remaining,omitempty"`
}

// CreateCourseResult is returned by create_course
type CreateCourseResult struct {
	ActionResult
	CourseID *uuid.UUID `json:"course_id,omitempty"`
}
