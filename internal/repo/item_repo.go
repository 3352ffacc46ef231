// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Item model
// and its image sub-table.
//
// The repository follows a "thin" approach: it performs persistence and query
// composition, leaving lifecycle rules (who may create, which transitions are
// legal) to the services package.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
)

// CreateItem inserts an item row together with its image rows in the caller's
// db handle (pass a transaction to make the pair atomic). Image order is
// preserved; the first image is flagged primary.
func CreateItem(ctx context.Context, db *gorm.DB, item *domain.Item, imagePaths []string) (*domain.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	for i, p := range imagePaths {
		img := &domain.ItemImage{
			ID:        uuid.NewString(),
			ItemID:    item.ID,
			FilePath:  p,
			IsPrimary: i == 0,
			CreatedAt: time.Now().UTC(),
		}
		if err := db.WithContext(ctx).Create(img).Error; err != nil {
			return nil, err
		}
		item.Images = append(item.Images, *img)
	}
	return item, nil
}

// GetItem fetches an item by ID with its images preloaded, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error) {
	var it domain.Item
	err := db.WithContext(ctx).
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItemStatus force-sets the lifecycle status of an item (admin
// moderation path; any source status is allowed). Returns ErrNotFound when no
// row matches.
func UpdateItemStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkItemSwapped transitions an item to swapped, guarded so an already
// swapped item is never committed twice. It returns the number of rows
// affected: 0 means the item was missing or had already reached swapped, and
// the caller (running inside a transaction) must roll back.
func MarkItemSwapped(ctx context.Context, db *gorm.DB, id string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ? AND status <> ?", id, domain.ItemStatusSwapped).
		Updates(map[string]any{"status": domain.ItemStatusSwapped, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// SetItemFeatured writes the featured flag. Returns ErrNotFound when no row
// matches.
func SetItemFeatured(ctx context.Context, db *gorm.DB, id string, featured bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_featured": featured, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ItemFilter narrows item listings. The zero value matches everything.
type ItemFilter struct {
	Status   string // exact status; empty/"all" for any
	Category string // exact category
	OwnerID  string // exact owner
	Search   string // matches title, description, or tags, substring
	Featured *bool  // featured flag, nil for any
}

// CountItems returns the number of items matching the filter.
func CountItems(ctx context.Context, db *gorm.DB, f ItemFilter) (int64, error) {
	var total int64
	err := itemQuery(db.WithContext(ctx), f).Count(&total).Error
	return total, err
}

// ListItemsPage returns a page of items matching the filter, newest first,
// with images preloaded.
func ListItemsPage(ctx context.Context, db *gorm.DB, f ItemFilter, offset, limit int) ([]domain.Item, error) {
	var out []domain.Item
	q := itemQuery(db.WithContext(ctx), f).
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC, id ASC") }).
		Order("created_at desc").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListSimilarItems returns up to limit approved items sharing category with
// the given item, excluding the item itself and any IDs in exclude.
func ListSimilarItems(ctx context.Context, db *gorm.DB, category, excludeID string, exclude []string, limit int) ([]domain.Item, error) {
	var out []domain.Item
	q := db.WithContext(ctx).
		Preload("Images").
		Where("category = ? AND id <> ? AND status = ?", category, excludeID, domain.ItemStatusApproved)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	err := q.Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

// ListItemsByTag returns up to limit approved items whose tags contain the
// given tag, excluding the item itself and any IDs in exclude.
func ListItemsByTag(ctx context.Context, db *gorm.DB, tag, excludeID string, exclude []string, limit int) ([]domain.Item, error) {
	var out []domain.Item
	q := db.WithContext(ctx).
		Preload("Images").
		Where("tags LIKE ? AND id <> ? AND status = ?", "%"+tag+"%", excludeID, domain.ItemStatusApproved)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	err := q.Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

// itemQuery composes the shared WHERE clause for filtered item listings.
func itemQuery(db *gorm.DB, f ItemFilter) *gorm.DB {
	q := db.Model(&domain.Item{})
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
	}
	return q
}
