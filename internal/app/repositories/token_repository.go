package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/dberrors"
	"github.com/yigit/dancestudio/internal/pkg/logger"
)

// TokenRepository handles refresh token database operations
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a new refresh token
func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("auth_refresh_tokens").
		Columns("token", "user_id", "expires_at", "is_revoked", "created_at").
		Values(token, userID, expiresAt, false, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "auth_refresh_tokens_pkey") {
			logger.Warn().Str("userID", userID.String()).Msg("Attempted to create duplicate refresh token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// RefreshRotation is the refresh token a rotation hands back to the caller
type RefreshRotation struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// RotateToken revokes oldToken and stores newToken in its place, atomically.
// An expired or unknown old token is rejected and nothing is written. A token
// revoked by a rotation less than reuseWindow ago resolves to its still valid
// successor, so parallel requests holding the same cookie share one rotation.
func (r *TokenRepository) RotateToken(ctx context.Context, oldToken, newToken string, expiresAt time.Time, reuseWindow time.Duration) (*RefreshRotation, error) {
	selectSQL, selectArgs, err := r.sb.Select("user_id", "expires_at", "is_revoked", "replaced_by", "revoked_at").
		From("auth_refresh_tokens").
		Where(squirrel.Eq{"token": oldToken}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rotate token query: %w", err)
	}

	var rotation *RefreshRotation
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var (
			userID     uuid.UUID
			expiry     time.Time
			revoked    bool
			replacedBy *string
			revokedAt  *time.Time
		)
		if err := tx.QueryRow(ctx, selectSQL, selectArgs...).Scan(&userID, &expiry, &revoked, &replacedBy, &revokedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrTokenNotFound
			}
			return fmt.Errorf("error retrieving token: %w", err)
		}

		now := time.Now()
		if revoked {
			if replacedBy == nil || revokedAt == nil || now.Sub(*revokedAt) > reuseWindow {
				return apperrors.ErrTokenRevoked
			}
			successor, err := r.activeSuccessor(ctx, tx, *replacedBy, now)
			if err != nil {
				return err
			}
			rotation = &RefreshRotation{UserID: userID, Token: *replacedBy, ExpiresAt: successor}
			return nil
		}
		if expiry.Before(now) {
			return apperrors.ErrTokenExpired
		}

		revokeSQL, revokeArgs, err := r.sb.Update("auth_refresh_tokens").
			Set("is_revoked", true).
			Set("revoked_at", now).
			Set("replaced_by", newToken).
			Where(squirrel.Eq{"token": oldToken}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build revoke token query: %w", err)
		}
		if _, err := tx.Exec(ctx, revokeSQL, revokeArgs...); err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}

		insertSQL, insertArgs, err := r.sb.Insert("auth_refresh_tokens").
			Columns("token", "user_id", "expires_at", "is_revoked", "created_at").
			Values(newToken, userID, expiresAt, false, now).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create token query: %w", err)
		}
		if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("error creating token: %w", err)
		}

		rotation = &RefreshRotation{UserID: userID, Token: newToken, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rotation, nil
}

// activeSuccessor returns the expiry of the token that replaced a rotated one,
// provided it is still usable
func (r *TokenRepository) activeSuccessor(ctx context.Context, tx pgx.Tx, token string, now time.Time) (time.Time, error) {
	sql, args, err := r.sb.Select("expires_at", "is_revoked").
		From("auth_refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build successor token query: %w", err)
	}

	var (
		expiry  time.Time
		revoked bool
	)
	if err := tx.QueryRow(ctx, sql, args...).Scan(&expiry, &revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, apperrors.ErrTokenRevoked
		}
		return time.Time{}, fmt.Errorf("error retrieving successor token: %w", err)
	}
	if revoked || expiry.Before(now) {
		return time.Time{}, apperrors.ErrTokenRevoked
	}
	return expiry, nil
}

// RevokeToken revokes a token
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	sql, args, err := r.sb.Update("auth_refresh_tokens").
		Set("is_revoked", true).
		Set("revoked_at", time.Now()).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// CleanupExpiredTokens removes expired tokens and revoked ones older than 30 days
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now()
	sql, args, err := r.sb.Delete("auth_refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"created_at": now.Add(-30 * 24 * time.Hour)},
			},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
