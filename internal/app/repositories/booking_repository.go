package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/dancestudio/internal/app/models"
)

// BookingRepository reads bookings; writes go through the booking procedures
type BookingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// HasConfirmed reports whether a confirmed booking exists for exactly this user and course
func (r *BookingRepository) HasConfirmed(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("bookings").
		Where(squirrel.Eq{
			"user_id":   userID,
			"course_id": courseID,
			"status":    models.BookingConfirmed,
		}).
		Prefix("SELECT EXISTS(").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build booking exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking booking: %w", err)
	}
	return exists, nil
}

// ListUpcomingByUser returns the user's confirmed bookings for courses on or after from
func (r *BookingRepository) ListUpcomingByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]models.Booking, error) {
	sql, args, err := r.sb.Select(
		"b.id", "b.user_id", "b.course_id", "b.subscription_id", "b.booking_type", "b.status",
		"b.created_at", "b.cancelled_at",
		"c.dance_style", "c.location", "c.scheduled_date", "to_char(c.start_time, 'HH24:MI')",
		"c.duration_minutes", "c.capacity", "c.status",
	).
		From("bookings b").
		Join("courses c ON c.id = b.course_id").
		Where(squirrel.Eq{"b.user_id": userID, "b.status": models.BookingConfirmed}).
		Where(squirrel.GtOrEq{"c.scheduled_date": calendarDate(from)}).
		OrderBy("c.scheduled_date ASC", "c.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upcoming bookings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}

	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Booking, error) {
		var b models.Booking
		c := &models.Course{}
		err := row.Scan(
			&b.ID, &b.UserID, &b.CourseID, &b.SubscriptionID, &b.BookingType, &b.Status,
			&b.CreatedAt, &b.CancelledAt,
			&c.DanceStyle, &c.Location, &c.ScheduledDate, &c.StartTime,
			&c.DurationMinutes, &c.Capacity, &c.Status,
		)
		c.ID = b.CourseID
		b.Course = c
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning bookings: %w", err)
	}
	return bookings, nil
}
