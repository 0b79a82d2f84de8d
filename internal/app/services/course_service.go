package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/models/dto"
	"github.com/yigit/dancestudio/internal/app/repositories"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/auth"
	"github.com/yigit/dancestudio/internal/pkg/helpers"
	"github.com/yigit/dancestudio/internal/pkg/viewcache"
)

// CourseService serves the public catalogue and the admin scheduling actions
type CourseService struct {
	invoker  db.Invoker
	courses  CourseReader
	guard    adminGuard
	cache    *viewcache.Cache
	location *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(
	invoker db.Invoker,
	courses CourseReader,
	roles RoleReader,
	cache *viewcache.Cache,
	location *time.Location,
	logger zerolog.Logger,
) *CourseService {
	if location == nil {
		location = time.UTC
	}
	return &CourseService{
		invoker:  invoker,
		courses:  courses,
		guard:    adminGuard{roles: roles, logger: logger},
		cache:    cache,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// ListCourses returns the course listing through the /courses view cache.
// Without a lower bound the listing starts at today's studio date.
func (s *CourseService) ListCourses(ctx context.Context, query dto.CourseListQuery) ([]models.Course, error) {
	filter, err := s.courseFilter(query)
	if err != nil {
		return nil, err
	}

	to := ""
	if !filter.To.IsZero() {
		to = filter.To.Format(helpers.DateLayout)
	}
	key := fmt.Sprintf("from=%s&to=%s&style=%s",
		filter.From.Format(helpers.DateLayout), to, strings.ToLower(filter.Style))

	return viewcache.Fetch(ctx, s.cache, viewcache.PathCourses, key, func(ctx context.Context) ([]models.Course, error) {
		return s.courses.List(ctx, filter)
	})
}

func (s *CourseService) courseFilter(query dto.CourseListQuery) (repositories.CourseFilter, error) {
	filter := repositories.CourseFilter{Style: strings.TrimSpace(query.Style)}

	if query.From != "" {
		from, err := helpers.ParseDate(query.From, s.location)
		if err != nil {
			return filter, apperrors.NewBadRequestError("Invalid from date")
		}
		filter.From = from
	} else {
		filter.From = s.now().In(s.location)
	}

	if query.To != "" {
		to, err := helpers.ParseDate(query.To, s.location)
		if err != nil {
			return filter, apperrors.NewBadRequestError("Invalid to date")
		}
		if to.Before(helpers.StartOfDay(filter.From, s.location)) {
			return filter, apperrors.NewBadRequestError("to must not be before from")
		}
		filter.To = to
	}

	return filter, nil
}

// GetCourse returns one course with its instructor and booking count
func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Course not found")
		}
		return nil, err
	}
	return course, nil
}

// ListInstructors returns every instructor for the scheduling form
func (s *CourseService) ListInstructors(ctx context.Context) ([]models.InstructorSummary, error) {
	return s.courses.ListInstructors(ctx)
}

// ScheduleCourse creates a course on behalf of an admin
func (s *CourseService) ScheduleCourse(ctx context.Context, caller *auth.Identity, input dto.ScheduleCourseRequest) dto.CreateCourseResult {
	if denied, ok := s.guard.authorize(ctx, caller, MsgScheduleFailed); !ok {
		return dto.CreateCourseResult{ActionResult: denied}
	}

	scheduled, err := helpers.ParseDate(input.ScheduledDate, s.location)
	if err != nil {
		return dto.CreateCourseResult{ActionResult: dto.Failed("Invalid scheduled date")}
	}
	if _, err := time.Parse("15:04", input.StartTime); err != nil {
		return dto.CreateCourseResult{ActionResult: dto.Failed("Invalid start time")}
	}

	result := callProcedure[dto.CreateCourseResult](ctx, s.invoker, s.logger, db.ProcCreateCourse, db.Args{
		{Name: "admin_id", Value: caller.UserID},
		{Name: "dance_style", Value: strings.TrimSpace(input.DanceStyle)},
		{Name: "instructor_id", Value: input.InstructorID},
		{Name: "location", Value: strings.TrimSpace(input.Location)},
		{Name: "scheduled_date", Value: scheduled},
		{Name: "start_time", Value: input.StartTime},
		{Name: "duration_minutes", Value: input.DurationMinutes},
		{Name: "capacity", Value: input.Capacity},
	}, MsgScheduleFailed)

	if result.Success {
		s.cache.Invalidate(ctx, viewcache.PathCourses)
	}
	return result
}

// UpdateCourseStatus completes or cancels a scheduled course.
// Transitions out of a terminal status are refused before any remote call.
func (s *CourseService) UpdateCourseStatus(ctx context.Context, caller *auth.Identity, courseID uuid.UUID, status models.CourseStatus) dto.ActionResult {
	if denied, ok := s.guard.authorize(ctx, caller, MsgStatusFailed); !ok {
		return denied
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return dto.Failed("Course not found")
		}
		s.logger.Error().Err(err).Str("courseID", courseID.String()).Msg("Failed to load course for status change")
		return dto.Failed(MsgStatusFailed)
	}

	if !course.Status.CanTransitionTo(status) {
		return dto.Failed(fmt.Sprintf("Cannot change course status from %s to %s", course.Status, status))
	}

	result := callProcedure[dto.ActionResult](ctx, s.invoker, s.logger, db.ProcUpdateCourseStatus, db.Args{
		{Name: "course_id", Value: courseID},
		{Name: "status", Value: string(status)},
		{Name: "admin_id", Value: caller.UserID},
	}, MsgStatusFailed)

	if result.Success {
		s.cache.Invalidate(ctx, viewcache.PathCourses, viewcache.PathAdminScanner)
	}
	return result
}
