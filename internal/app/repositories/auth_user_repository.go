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
	"github.com/yigit/dancestudio/internal/pkg/dberrors"
	"github.com/yigit/dancestudio/internal/pkg/logger"
)

var authUserColumns = []string{"id", "email", "password_hash", "email_confirmed_at", "is_active", "created_at", "last_sign_in_at"}

// AuthUserRepository stores identity provider accounts.
// A trigger in the studio schema creates the profile from user_metadata.
type AuthUserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAuthUserRepository creates a new AuthUserRepository
func NewAuthUserRepository(db *pgxpool.Pool) *AuthUserRepository {
	return &AuthUserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanAuthUser(row pgx.Row) (*models.AuthUser, error) {
	var (
		u    models.AuthUser
		hash *string
	)
	if err := row.Scan(&u.ID, &u.Email, &hash, &u.EmailConfirmedAt, &u.IsActive, &u.CreatedAt, &u.LastSignInAt); err != nil {
		return nil, err
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	return &u, nil
}

// Create inserts an unconfirmed account
func (r *AuthUserRepository) Create(ctx context.Context, email, passwordHash string, metadata map[string]any) (*models.AuthUser, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	sql, args, err := r.sb.Insert("auth_users").
		Columns("email", "password_hash", "user_metadata").
		Values(email, passwordHash, metadata).
		Suffix("RETURNING " + joinColumns(authUserColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create auth user query: %w", err)
	}

	user, err := scanAuthUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "auth_users_email_key") {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", email).Msg("Error executing create auth user query")
		return nil, fmt.Errorf("error creating auth user: %w", err)
	}
	return user, nil
}

// GetByEmail finds an account by case-insensitive email
func (r *AuthUserRepository) GetByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	sql, args, err := r.sb.Select(authUserColumns...).
		From("auth_users").
		Where("LOWER(email) = LOWER(?)", email).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get auth user query: %w", err)
	}
	return r.getOne(ctx, sql, args)
}

// GetByID retrieves an account by ID
func (r *AuthUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuthUser, error) {
	sql, args, err := r.sb.Select(authUserColumns...).
		From("auth_users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get auth user query: %w", err)
	}
	return r.getOne(ctx, sql, args)
}

func (r *AuthUserRepository) getOne(ctx context.Context, sql string, args []interface{}) (*models.AuthUser, error) {
	user, err := scanAuthUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving auth user: %w", err)
	}
	return user, nil
}

// ConfirmEmail marks the email as confirmed unless it already is
func (r *AuthUserRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("auth_users").
		Set("email_confirmed_at", squirrel.Expr("COALESCE(email_confirmed_at, ?)", at)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build confirm email query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error confirming email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// TouchLastSignIn records a successful sign-in
func (r *AuthUserRepository) TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("auth_users").
		Set("last_sign_in_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build last sign-in query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating last sign-in: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password hash of an account
func (r *AuthUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	sql, args, err := r.sb.Update("auth_users").
		Set("password_hash", passwordHash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
