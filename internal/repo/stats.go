// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// by the admin dashboard endpoint and for ETag generation on list responses.
// Each function is context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
)

// PlatformStats aggregates moderation-relevant counters across the three
// core tables.
type PlatformStats struct {
	TotalUsers    int64 `json:"total_users"`
	PendingUsers  int64 `json:"pending_users"`
	TotalItems    int64 `json:"total_items"`
	PendingItems  int64 `json:"pending_items"`
	SwappedItems  int64 `json:"swapped_items"`
	TotalSwaps    int64 `json:"total_swaps"`
	PendingSwaps  int64 `json:"pending_swaps"`
	AcceptedSwaps int64 `json:"accepted_swaps"`
}

// GetPlatformStats collects the admin dashboard counters. Each counter is a
// single COUNT query; the snapshot is not transactional, which is acceptable
// for an informational dashboard.
func GetPlatformStats(ctx context.Context, db *gorm.DB) (*PlatformStats, error) {
	var s PlatformStats
	type q struct {
		dst   *int64
		model any
		where []any
	}
	for _, c := range []q{
		{&s.TotalUsers, &domain.User{}, nil},
		{&s.PendingUsers, &domain.User{}, []any{"status = ?", domain.UserStatusPending}},
		{&s.TotalItems, &domain.Item{}, nil},
		{&s.PendingItems, &domain.Item{}, []any{"status = ?", domain.ItemStatusPending}},
		{&s.SwappedItems, &domain.Item{}, []any{"status = ?", domain.ItemStatusSwapped}},
		{&s.TotalSwaps, &domain.Swap{}, nil},
		{&s.PendingSwaps, &domain.Swap{}, []any{"status = ?", domain.SwapStatusPending}},
		{&s.AcceptedSwaps, &domain.Swap{}, []any{"status = ?", domain.SwapStatusAccepted}},
	} {
		tx := db.WithContext(ctx).Model(c.model)
		if len(c.where) > 0 {
			tx = tx.Where(c.where[0], c.where[1:]...)
		}
		if err := tx.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// ItemsStats returns aggregate metadata for the public item catalog: the
// number of approved items and the maximum UpdatedAt timestamp among them.
// Used to build weak ETags for the catalog listing.
//
// Return values:
//   - count:        total approved items
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func ItemsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Item{}).Where("status = ?", domain.ItemStatusApproved)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
