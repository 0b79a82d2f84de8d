package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/logger"
)

// CourseFilter narrows the course listing. Zero values mean no bound.
type CourseFilter struct {
	From  time.Time
	To    time.Time
	Style string
}

// CourseRepository reads courses and instructors
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// courseSelect joins the instructor summary and counts confirmed bookings
func (r *CourseRepository) courseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.dance_style", "c.instructor_id", "c.location", "c.scheduled_date",
		"to_char(c.start_time, 'HH24:MI')", "c.duration_minutes", "c.capacity", "c.status",
		"c.created_at", "c.updated_at",
		"i.id", "i.name", "i.bio", "i.image_url",
		"(SELECT COUNT(*) FROM bookings b WHERE b.course_id = c.id AND b.status = 'confirmed')",
	).
		From("courses c").
		LeftJoin("instructors i ON i.id = c.instructor_id")
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var (
		course         models.Course
		instructorID   *uuid.UUID
		instructorName *string
		instructorBio  *string
		instructorImg  *string
		booked         int
	)

	err := row.Scan(
		&course.ID, &course.DanceStyle, &course.InstructorID, &course.Location, &course.ScheduledDate,
		&course.StartTime, &course.DurationMinutes, &course.Capacity, &course.Status,
		&course.CreatedAt, &course.UpdatedAt,
		&instructorID, &instructorName, &instructorBio, &instructorImg,
		&booked,
	)
	if err != nil {
		return nil, err
	}

	if instructorID != nil {
		course.Instructor = &models.InstructorSummary{
			ID:       *instructorID,
			Bio:      instructorBio,
			ImageURL: instructorImg,
		}
		if instructorName != nil {
			course.Instructor.Name = *instructorName
		}
	}
	course.BookedCount = &booked

	return &course, nil
}

// List returns courses ordered by date and start time
func (r *CourseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.courseSelect()

	if !filter.From.IsZero() {
		query = query.Where(squirrel.GtOrEq{"c.scheduled_date": calendarDate(filter.From)})
	}
	if !filter.To.IsZero() {
		query = query.Where(squirrel.LtOrEq{"c.scheduled_date": calendarDate(filter.To)})
	}
	if filter.Style != "" {
		query = query.Where(squirrel.ILike{"c.dance_style": "%" + filter.Style + "%"})
	}

	sql, args, err := query.OrderBy("c.scheduled_date ASC", "c.start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// GetScheduledOn returns the earliest scheduled course on the given calendar day.
// It returns apperrors.ErrCourseNotFound when there is none.
func (r *CourseRepository) GetScheduledOn(ctx context.Context, day time.Time) (*models.Course, error) {
	sql, args, err := r.courseSelect().
		Where(squirrel.Eq{"c.scheduled_date": calendarDate(day), "c.status": models.CourseScheduled}).
		OrderBy("c.start_time ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build todays course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving todays course: %w", err)
	}
	return course, nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	sql, args, err := r.courseSelect().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// ListInstructors returns every instructor ordered by name
func (r *CourseRepository) ListInstructors(ctx context.Context) ([]models.InstructorSummary, error) {
	sql, args, err := r.sb.Select("id", "name", "bio", "image_url").
		From("instructors").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list instructors query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing instructors: %w", err)
	}

	instructors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.InstructorSummary, error) {
		var i models.InstructorSummary
		err := row.Scan(&i.ID, &i.Name, &i.Bio, &i.ImageURL)
		return i, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning instructors: %w", err)
	}
	return instructors, nil
}

// calendarDate drops the clock so the value binds as a DATE for the local day
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
