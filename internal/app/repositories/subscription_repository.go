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

// SubscriptionRepository reads subscription balances.
// remaining_credits is computed by the subscription_balances view.
type SubscriptionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActiveByUser returns the user's active subscriptions, newest first
func (r *SubscriptionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	sql, args, err := r.sb.Select("id", "user_id", "type", "remaining_credits", "starts_at", "expires_at", "is_active").
		From("subscription_balances").
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		OrderBy("starts_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subscriptions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}

	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subscription, error) {
		var s models.Subscription
		err := row.Scan(&s.ID, &s.UserID, &s.Type, &s.RemainingCredits, &s.StartsAt, &s.ExpiresAt, &s.IsActive)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning subscriptions: %w", err)
	}
	return subs, nil
}
