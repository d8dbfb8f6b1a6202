// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package plans maps subscription tiers to the count limits they grant.
// It only answers whether one more page or post is allowed.
package plans

import (
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"
)

// ErrLimitReached is returned when the caller's tier does not allow
// another resource.
var ErrLimitReached = errors.New("plan limit reached")

// Unlimited marks a limit that is not enforced.
const Unlimited = -1

// Limits are the counts a tier allows.
type Limits struct {
	PagesPerBlog  int `json:"pages_per_blog"`
	PostsPerMonth int `json:"posts_per_month"`
}

var limits = map[models.Tier]Limits{
	models.TierFree:  {PagesPerBlog: 3, PostsPerMonth: 10},
	models.TierBasic: {PagesPerBlog: 10, PostsPerMonth: 100},
	models.TierPro:   {PagesPerBlog: Unlimited, PostsPerMonth: Unlimited},
}

// For returns the limits of a tier. Unknown tiers get the free limits.
func For(t models.Tier) Limits {
	if l, ok := limits[t]; ok {
		return l
	}
	return limits[models.TierFree]
}

// CheckPages reports ErrLimitReached when a blog that already has current
// pages may not get another.
func CheckPages(t models.Tier, current int) error {
	return check("pages", For(t).PagesPerBlog, current)
}

// CheckPosts reports ErrLimitReached when current posts this month is
// already at the tier's monthly allowance.
func CheckPosts(t models.Tier, current int) error {
	return check("posts this month", For(t).PostsPerMonth, current)
}

func check(what string, limit, current int) error {
	if limit == Unlimited || current < limit {
		return nil
	}
	return fmt.Errorf("%d %s allowed: %w", limit, what, ErrLimitReached)
}

// MonthStart returns the first instant of now's calendar month in UTC.
// Monthly post limits count from here.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
