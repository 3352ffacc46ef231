// Package services – ItemService
//
// This file implements the item registry: creating listings, the public
// catalog (browse, featured, categories, detail, similar), per-user listings,
// and the admin moderation transitions (status force-set, featured toggle).
// Category values are normalized with golang.org/x/text casing before
// persistence so filters behave predictably.
//
// Service-level errors (e.g. ErrItemNotFound, ErrItemNotFeatureable) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
)

// Category is an entry of the fixed category catalog.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories is the catalog offered to clients. Kept in code for now; a real
// deployment would move this to a table.
var Categories = []Category{
	{ID: "shirts", Name: "Shirts"},
	{ID: "tshirts", Name: "T-Shirts"},
	{ID: "pants", Name: "Pants"},
	{ID: "jeans", Name: "Jeans"},
	{ID: "dresses", Name: "Dresses"},
	{ID: "skirts", Name: "Skirts"},
	{ID: "jackets", Name: "Jackets"},
	{ID: "hoodies", Name: "Hoodies"},
	{ID: "sweaters", Name: "Sweaters"},
	{ID: "shoes", Name: "Shoes"},
	{ID: "accessories", Name: "Accessories"},
}

// featuredLimit caps the featured-items strip on the home page.
const featuredLimit = 5

// similarLimit caps the similar-items block on the detail page.
const similarLimit = 4

// ItemService provides listing lifecycle and catalog operations.
type ItemService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewItemService constructs an ItemService bound to db.
func NewItemService(db *gorm.DB) *ItemService { return &ItemService{DB: db} }

// CreateItemInput carries the caller-supplied fields for a new listing.
type CreateItemInput struct {
	Title       string
	Description string
	Category    string
	Size        string
	Condition   string
	Tags        string
	Images      []string // paths/URLs, first becomes primary
}

// Create persists a new listing owned by ownerID. Required fields are title,
// description, category, size, condition, and at least one image. Items enter
// the catalog pending unless the owner is an admin, whose listings are
// approved immediately. The owner account must have passed the moderation
// gate (admins bypass it). The item row and its image rows are written in one
// transaction.
func (s *ItemService) Create(ctx context.Context, ownerID string, in CreateItemInput) (*domain.Item, error) {
	owner, err := repo.GetUser(ctx, s.DB, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !owner.IsApproved() && !owner.IsAdmin() {
		return nil, ErrAccountNotApproved
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Size = strings.TrimSpace(in.Size)
	in.Condition = strings.TrimSpace(in.Condition)
	if in.Title == "" || in.Description == "" || strings.TrimSpace(in.Category) == "" ||
		in.Size == "" || in.Condition == "" {
		return nil, ErrMissingFields
	}
	if len(in.Images) == 0 {
		return nil, ErrNoImages
	}

	status := domain.ItemStatusPending
	if owner.IsAdmin() {
		status = domain.ItemStatusApproved
	}

	item := &domain.Item{
		Title:       in.Title,
		Description: in.Description,
		Category:    normalizeCategory(in.Category),
		Size:        in.Size,
		Condition:   in.Condition,
		Tags:        strings.TrimSpace(in.Tags),
		Status:      status,
		OwnerID:     ownerID,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := repo.CreateItem(ctx, tx, item, in.Images)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns a single item with its images, or ErrItemNotFound.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	it, err := repo.GetItem(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

// BrowsePage returns a page of approved items, optionally narrowed by
// category and free-text search, plus the total count.
func (s *ItemService) BrowsePage(ctx context.Context, category, search string, page, pageSize int) ([]domain.Item, int64, error) {
	f := repo.ItemFilter{
		Status:   domain.ItemStatusApproved,
		Category: normalizeCategory(category),
		Search:   strings.TrimSpace(search),
	}
	if category == "" {
		f.Category = ""
	}
	return s.listPage(ctx, f, page, pageSize)
}

// Featured returns the featured approved items, newest first, capped at five.
func (s *ItemService) Featured(ctx context.Context) ([]domain.Item, error) {
	featured := true
	return repo.ListItemsPage(ctx, s.DB, repo.ItemFilter{
		Status:   domain.ItemStatusApproved,
		Featured: &featured,
	}, 0, featuredLimit)
}

/// Similar returns up to four approved items related to the given item: same
// category first, topped up by tag matches when the category alone does not
// fill the block.
func (s *ItemService) Similar(ctx context.Context, id string) ([]domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := repo.ListSimilarItems(ctx, s.DB, item.Category, id, nil, similarLimit)
	if err != nil {
		return nil, err
	}

	if len(out) < similarLimit && item.Tags != "" {
		seen := make([]string, 0, len(out))
		for _, it := range out {
			seen = append(seen, it.ID)
		}
		for _, tag := range strings.Split(item.Tags, ",") {
			if len(out) >= similarLimit {
				break
			}
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			more, err := repo.ListItemsByTag(ctx, s.DB, tag, id, seen, similarLimit-len(out))
			if err != nil {
				return nil, err
			}
			for _, it := range more {
				out = append(out, it)
				seen = append(seen, it.ID)
			}
		}
	}
	return out, nil
}

// OwnPage returns a page of the user's own items, any status.
func (s *ItemService) OwnPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Item, int64, error) {
	return s.listPage(ctx, repo.ItemFilter{OwnerID: ownerID}, page, pageSize)
}

// AdminPage returns a page of all items for moderation, optionally narrowed
// by status and search. Caller must have passed RequireAdmin.
func (s *ItemService) AdminPage(ctx context.Context, status, search string, page, pageSize int) ([]domain.Item, int64, error) {
	return s.listPage(ctx, repo.ItemFilter{Status: status, Search: strings.TrimSpace(search)}, page, pageSize)
}

// SetStatus force-sets an item's moderation status. Admin-only; the target
/// must be approved or rejected. No constraint is placed on the source status:
// an admin may override any state, including swapped (kept permissive on
// purpose, see DESIGN.md).
func (s *ItemService) SetStatus(ctx context.Context, actorID, itemID, status string) error {
	if _, err := RequireAdmin(ctx, s.DB, actorID); err != nil {
		return err
	}
	if !domain.ValidItemModeration(status) {
		return ErrInvalidStatus
	}
	if err := repo.UpdateItemStatus(ctx, s.DB, itemID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

// ToggleFeatured flips the featured flag of an approved item. Admin-only;
// items in any other state are rejected with ErrItemNotFeatureable. The read
// and the write run in one transaction so a concurrent moderation cannot
// slip between them.
func (s *ItemService) ToggleFeatured(ctx context.Context, actorID, itemID string) (bool, error) {
	if _, err := RequireAdmin(ctx, s.DB, actorID); err != nil {
		return false, err
	}

	var featured bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := repo.GetItem(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if item.Status != domain.ItemStatusApproved {
			return ErrItemNotFeatureable
		}
		featured = !item.IsFeatured
		return repo.SetItemFeatured(ctx, tx, itemID, featured)
	})
	return featured, err
}

// listPage applies paging defaults and performs the count+page pair.
func (s *ItemService) listPage(ctx context.Context, f repo.ItemFilter, page, pageSize int) ([]domain.Item, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountItems(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Item{}, 0, nil
	}

	items, err := repo.ListItemsPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
	return items, total, err
}

// categoryCaser lowercases category identifiers consistently regardless of
// the client's casing.
var categoryCaser = cases.Lower(language.English)

// normalizeCategory trims and lowercases a category identifier.
func normalizeCategory(c string) string {
	return categoryCaser.String(strings.TrimSpace(c))
}
