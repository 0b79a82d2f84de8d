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
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/dberrors"
)

// OneTimeTokenRepository stores email link tokens (signup confirmation, magic link, recovery).
// Only the hash of a token is stored.
type OneTimeTokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOneTimeTokenRepository creates a new OneTimeTokenRepository
func NewOneTimeTokenRepository(db *pgxpool.Pool) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a token hash of the given type
func (r *OneTimeTokenRepository) CreateToken(ctx context.Context, tokenHash string, userID uuid.UUID, tokenType string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("auth_one_time_tokens").
		Columns("token_hash", "user_id", "token_type", "expires_at").
		Values(tokenHash, userID, tokenType, expiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return fmt.Errorf("one-time token hash already stored: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("error creating one-time token: %w", err)
	}
	return nil
}

// ConsumeToken marks an unused, unexpired token of one of the given types as
// consumed and returns its owner. Any other token yields ErrInvalidOneTimeToken.
func (r *OneTimeTokenRepository) ConsumeToken(ctx context.Context, tokenHash string, tokenTypes ...string) (uuid.UUID, error) {
	sql, args, err := r.sb.Update("auth_one_time_tokens").
		Set("consumed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token_hash": tokenHash, "token_type": tokenTypes, "consumed_at": nil}).
		Where(squirrel.Gt{"expires_at": time.Now()}).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("error building SQL: %w", err)
	}

	var userID uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperrors.ErrInvalidOneTimeToken
		}
		return uuid.Nil, fmt.Errorf("error consuming one-time token: %w", err)
	}
	return userID, nil
}

// DeleteTokensByUserID deletes unconsumed tokens of a type for a user
func (r *OneTimeTokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID, tokenType string) error {
	sql, args, err := r.sb.Delete("auth_one_time_tokens").
		Where(squirrel.Eq{"user_id": userID, "token_type": tokenType, "consumed_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting tokens for user: %w", err)
	}
	return nil
}
