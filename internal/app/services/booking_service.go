package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/helpers"
	"github.com/yigit/dancestudio/internal/pkg/viewcache"
)

// BookingService runs the member booking actions and the scanner check-in.
// Capacity, credits and ownership are decided by the remote procedures.
type BookingService struct {
	invoker  db.Invoker
	courses  TodaysCourseFinder
	bookings BookingChecker
	guard    adminGuard
	views    Invalidator
	location *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	invoker db.Invoker,
	courses TodaysCourseFinder,
	bookings BookingChecker,
	roles RoleReader,
	views Invalidator,
	location *time.Location,
	logger zerolog.Logger,
) *BookingService {
	if location == nil {
		location = time.UTC
	}
	return &BookingService{
		invoker:  invoker,
		courses:  courses,
		bookings: bookings,
		guard:    adminGuard{roles: roles, logger: logger},
		views:    views,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// BookCourse reserves a seat for the caller
func (s *BookingService) BookCourse(ctx context.Context, caller *auth.Identity, courseID uuid.UUID) dto.BookCourseResult {
	if caller == nil {
		return dto.BookCourseResult{ActionResult: dto.Failed(MsgNotAuthenticated)}
	}

	result := callProcedure[dto.BookCourseResult](ctx, s.invoker, s.logger, db.ProcBookCourse, db.Args{
		{Name: "user_id", Value: caller.UserID},
		{Name: "course_id", Value: courseID},
	}, MsgBookFailed)

	if result.Success {
		s.views.Invalidate(ctx, viewcache.PathCourses, viewcache.PathProfile)
	}
	return result
}

// CancelBooking cancels one of the caller's bookings
func (s *BookingService) CancelBooking(ctx context.Context, caller *auth.Identity, bookingID uuid.UUID) dto.ActionResult {
	if caller == nil {
		return dto.Failed(MsgNotAuthenticated)
	}

	result := callProcedure[dto.ActionResult](ctx, s.invoker, s.logger, db.ProcCancelBooking, db.Args{
		{Name: "booking_id", Value: bookingID},
		{Name: "user_id", Value: caller.UserID},
	}, MsgCancelFailed)

	if result.Success {
		s.views.Invalidate(ctx, viewcache.PathCourses, viewcache.PathProfile)
	}
	return result
}

// PerformCourseCheckin records attendance of userID on behalf of an admin caller
func (s *BookingService) PerformCourseCheckin(ctx context.Context, caller *auth.Identity, userID, courseID uuid.UUID, isDropIn bool) dto.CheckinResult {
	if denied, ok := s.guard.authorize(ctx, caller, MsgCheckinFailed); !ok {
		return dto.CheckinResult{ActionResult: denied}
	}

	result := callProcedure[dto.CheckinResult](ctx, s.invoker, s.logger, db.ProcPerformCheckin, db.Args{
		{Name: "user_id", Value: userID},
		{Name: "course_id", Value: courseID},
		{Name: "admin_id", Value: caller.UserID},
		{Name: "is_drop_in", Value: isDropIn},
	}, MsgCheckinFailed)

	if result.Success {
		s.views.Invalidate(ctx, viewcache.PathAdminScanner, viewcache.PathProfile)
	}
	return result
}

// GetTodaysCourse returns the scheduled course of the current studio day.
// Query failures are logged and reported as ReadFailed with a nil course.
func (s *BookingService) GetTodaysCourse(ctx context.Context) (*models.Course, ReadStatus) {
	today := s.now().In(s.location)

	course, err := s.courses.GetScheduledOn(ctx, today)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, ReadEmpty
		}
		s.logger.Error().Err(err).Str("date", today.Format(helpers.DateLayout)).Msg("Failed to load todays course")
		return nil, ReadFailed
	}
	return course, ReadFound
}

// HasBookingForCourse reports whether userID holds a confirmed booking for courseID.
// Query failures are logged and reported as false with ReadFailed.
func (s *BookingService) HasBookingForCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, ReadStatus) {
	exists, err := s.bookings.HasConfirmed(ctx, userID, courseID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("userID", userID.String()).
			Str("courseID", courseID.String()).
			Msg("Failed to check booking")
		return false, ReadFailed
	}
	if !exists {
		return false, ReadEmpty
	}
	return true, ReadFound
}
