package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus is the lifecycle state of a scheduled class
type CourseStatus string

const (
	CourseScheduled CourseStatus = "scheduled"
	CourseCompleted CourseStatus = "completed"
	CourseCancelled CourseStatus = "cancelled"
)

// IsValid reports whether s is a known course status
func (s CourseStatus) IsValid() bool {
	switch s {
	case CourseScheduled, CourseCompleted, CourseCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
// Transitions only leave `scheduled`; completed and cancelled are terminal.
func (s CourseStatus) CanTransitionTo(next CourseStatus) bool {
	return s == CourseScheduled && (next == CourseCompleted || next == CourseCancelled)
}

// Course is a single scheduled class
type Course struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	DanceStyle      string       `json:"danceStyle" db:"dance_style"`
	InstructorID    *uuid.UUID   `json:"instructorId,omitempty" db:"instructor_id"`
	Location        string       `json:"location" db:"location"`
	ScheduledDate   time.Time    `json:"scheduledDate" db:"scheduled_date"`
	StartTime       string       `json:"startTime" db:"start_time"`
	DurationMinutes int          `json:"durationMinutes" db:"duration_minutes"`
	Capacity        int          `json:"capacity" db:"capacity"`
	Status          CourseStatus `json:"status" db:"status"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Instructor  *InstructorSummary `json:"instructor,omitempty"`
	BookedCount *int               `json:"bookedCount,omitempty"`
}
