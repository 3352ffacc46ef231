// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Swap model.
//
// The accept path relies on guarded UPDATE statements (WHERE clauses on the
// current status, RowsAffected checked by the caller) so that two concurrent
// responders can never both commit. The service layer wraps these calls in a
// transaction; this package never opens one itself.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
)

// CreateSwap inserts a new pending swap row. The ID is a generated UUID and
// CreatedAt is set to UTC. A unique-constraint violation (the partial index
// on pending tuples) is propagated raw for the service layer to translate.
func CreateSwap(ctx context.Context, db *gorm.DB, requesterID, providerID, requesterItemID, providerItemID string) (*domain.Swap, error) {
	s := &domain.Swap{
		ID:              uuid.NewString(),
		RequesterID:     requesterID,
		ProviderID:      providerID,
		RequesterItemID: requesterItemID,
		ProviderItemID:  providerItemID,
		Status:          domain.SwapStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSwap fetches a swap by ID, or ErrNotFound if missing. Associations are
// not preloaded; use GetSwapDetail for API responses.
func GetSwap(ctx context.Context, db *gorm.DB, id string) (*domain.Swap, error) {
	var s domain.Swap
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSwapDetail fetches a swap with both users and both items (plus item
// images) preloaded.
func GetSwapDetail(ctx context.Context, db *gorm.DB, id string) (*domain.Swap, error) {
	var s domain.Swap
	err := db.WithContext(ctx).
		Preload("Requester").
		Preload("Provider").
		Preload("RequesterItem.Images").
		Preload("ProviderItem.Images").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PendingSwapExists reports whether a pending swap already exists for the
// exact (requester, provider, requester item, provider item) tuple.
func PendingSwapExists(ctx context.Context, db *gorm.DB, requesterID, providerID, requesterItemID, providerItemID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Swap{}).
		Where("requester_id = ? AND provider_id = ? AND requester_item_id = ? AND provider_item_id = ? AND status = ?",
			requesterID, providerID, requesterItemID, providerItemID, domain.SwapStatusPending).
		Count(&n).Error
	return n > 0, err
}

// DecideSwap transitions a swap from pending to the given terminal status.
// The update is guarded on the current status: it returns the number of rows
// affected, and 0 means the swap was missing or already decided.
func DecideSwap(ctx context.Context, db *gorm.DB, id, status string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Swap{}).
		Where("id = ? AND status = ?", id, domain.SwapStatusPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// SwapFilter narrows swap listings for a participant.
type SwapFilter struct {
	UserID string // the participant; required
	Role   string // "requester", "provider", or ""/"all" for either side
	Status string // exact status; empty/"all" for any
}

// CountSwaps returns the number of swaps matching the filter.
func CountSwaps(ctx context.Context, db *gorm.DB, f SwapFilter) (int64, error) {
	var total int64
	err := swapQuery(db.WithContext(ctx), f).Count(&total).Error
	return total, err
}

// ListSwapsPage returns a page of swaps matching the filter, newest first,
// with both users and both items preloaded.
func ListSwapsPage(ctx context.Context, db *gorm.DB, f SwapFilter, offset, limit int) ([]domain.Swap, error) {
	var out []domain.Swap
	err := swapQuery(db.WithContext(ctx), f).
		Preload("Requester").
		Preload("Provider").
		Preload("RequesterItem.Images").
		Preload("ProviderItem.Images").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountAcceptedSwapsForItem returns the number of accepted swaps referencing
// the item on either side. Used by the admin stats endpoint and by tests
// asserting the single-commitment invariant.
func CountAcceptedSwapsForItem(ctx context.Context, db *gorm.DB, itemID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Swap{}).
		Where("(requester_item_id = ? OR provider_item_id = ?) AND status = ?",
			itemID, itemID, domain.SwapStatusAccepted).
		Count(&n).Error
	return n, err
}

// swapQuery composes the shared WHERE clause for filtered swap listings.
func swapQuery(db *gorm.DB, f SwapFilter) *gorm.DB {
	q := db.Model(&domain.Swap{})
	switch f.Role {
	case "requester":
		q = q.Where("requester_id = ?", f.UserID)
	case "provider":
		q = q.Where("provider_id = ?", f.UserID)
	default:
		q = q.Where("requester_id = ? OR provider_id = ?", f.UserID, f.UserID)
	}
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}
