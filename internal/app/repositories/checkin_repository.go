package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/dancestudio/internal/app/models"
)

// CheckinRepository reads attendance records
type CheckinRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCheckinRepository creates a new CheckinRepository
func NewCheckinRepository(db *pgxpool.Pool) *CheckinRepository {
	return &CheckinRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByCourse returns the check-ins of a course in arrival order
func (r *CheckinRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Checkin, error) {
	sql, args, err := r.sb.Select("ch.id", "ch.user_id", "ch.course_id", "ch.booking_type", "ch.checked_in_at", "COALESCE(p.full_name, '')").
		From("checkins ch").
		LeftJoin("profiles p ON p.id = ch.user_id").
		Where(squirrel.Eq{"ch.course_id": courseID}).
		OrderBy("ch.checked_in_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build checkins query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing checkins: %w", err)
	}

	checkins, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Checkin, error) {
		var c models.Checkin
		err := row.Scan(&c.ID, &c.UserID, &c.CourseID, &c.BookingType, &c.CheckedInAt, &c.MemberName)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning checkins: %w", err)
	}
	return checkins, nil
}
