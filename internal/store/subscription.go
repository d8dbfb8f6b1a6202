// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// SubscriptionStore reads plan tiers written by the billing integration.
type SubscriptionStore struct {
	db *sql.DB
}

// NewSubscriptionStore creates a new SubscriptionStore with the given database connection.
func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// FindByUser returns a user's subscription, or nil when they have none.
func (s *SubscriptionStore) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, tier, current_period_end, created_at, updated_at
		FROM subscriptions WHERE user_id = $1
	`, userID).Scan(&sub.UserID, &sub.Tier, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

// Upsert sets a user's tier.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub *models.Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, tier, current_period_end)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()
	`, sub.UserID, sub.Tier, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
