package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/dancestudio/internal/app/models"
)

// VerificationRepository reads member verification requests
type VerificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListPending returns pending requests, oldest first
func (r *VerificationRepository) ListPending(ctx context.Context) ([]models.VerificationRequest, error) {
	sql, args, err := r.sb.Select(
		"v.id", "v.user_id", "v.kind", "v.note", "v.status", "v.submitted_at", "v.reviewed_at", "v.reviewer_id",
		"COALESCE(p.full_name, '')", "COALESCE(p.email, '')",
	).
		From("verification_requests v").
		LeftJoin("profiles p ON p.id = v.user_id").
		Where(squirrel.Eq{"v.status": models.VerificationPending}).
		OrderBy("v.submitted_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending verifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing verifications: %w", err)
	}

	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VerificationRequest, error) {
		var v models.VerificationRequest
		err := row.Scan(&v.ID, &v.UserID, &v.Kind, &v.Note, &v.Status, &v.SubmittedAt, &v.ReviewedAt, &v.ReviewerID,
			&v.MemberName, &v.MemberEmail)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning verifications: %w", err)
	}
	return requests, nil
}
