package dto

import "github.com/google/uuid"

// BookCourseRequest asks for a seat in a course
type BookCourseRequest struct {
	CourseID uuid.UUID `json:"courseId" binding:"required"`
}

// CheckinRequest is posted by the admin scanner after reading a member QR code
type CheckinRequest struct {
	UserID   uuid.UUID `json:"userId" binding:"required"`
	CourseID uuid.UUID `json:"courseId" binding:"required"`
	IsDropIn bool      `json:"isDropIn"`
}

// ScheduleCourseRequest creates a course
type ScheduleCourseRequest struct {
	DanceStyle      string     `json:"danceStyle" binding:"required,max=50"`
	InstructorID    *uuid.UUID `json:"instructorId"`
	Location        string     `json:"location" binding:"required,max=100"`
	ScheduledDate   string     `json:"scheduledDate" binding:"required,datetime=2006-01-02"`
	StartTime       string     `json:"startTime" binding:"required,datetime=15:04"`
	DurationMinutes int        `json:"durationMinutes" binding:"required,min=15,max=480"`
	Capacity        int        `json:"capacity" binding:"required,min=1,max=200"`
}

// UpdateCourseStatusRequest moves a course out of scheduled
type UpdateCourseStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}

// SetUserRoleRequest changes a member's role
type SetUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member admin"`
}

// ReviewVerificationRequest approves or rejects a verification request
type ReviewVerificationRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Note    string `json:"note" binding:"max=500"`
}

// SubmitVerificationRequest is sent by a member asking to be verified
type SubmitVerificationRequest struct {
	Kind string `json:"kind" binding:"required,max=50"`
	Note string `json:"note" binding:"max=500"`
}

// CourseListQuery filters the public course listing
type CourseListQuery struct {
	From  string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To    string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Style string `form:"style" binding:"omitempty,max=50"`
}

// UserListQuery filters and pages the admin user listing
type UserListQuery struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}
