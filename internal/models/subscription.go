// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a subscription plan level.
type Tier string

const (
	TierFree  Tier = "free"
	TierBasic Tier = "basic"
	TierPro   Tier = "pro"
)

// Subscription records a user's plan. Checkout and renewal are handled by
// the billing provider; only the resulting tier is stored here.
type Subscription struct {
	UserID           uuid.UUID  `json:"user_id"`
	Tier             Tier       `json:"tier"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EffectiveTier returns the tier in force at now. A paid tier whose period
// has ended falls back to free.
func (s *Subscription) EffectiveTier(now time.Time) Tier {
	if s == nil {
		return TierFree
	}
	if s.Tier != TierFree && s.CurrentPeriodEnd != nil && now.After(*s.CurrentPeriodEnd) {
		return TierFree
	}
	return s.Tier
}
