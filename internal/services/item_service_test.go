package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
)

func validItemInput() CreateItemInput {
	return CreateItemInput{
		Title:       "Denim jacket",
		Description: "blue, lightly worn",
		Category:    "Jackets",
		Size:        "M",
		Condition:   "good",
		Tags:        "denim,blue",
		Images:      []string{"a.jpg", "b.jpg"},
	}
}

func TestItemCreate_PendingForRegularUser(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "u1")
	svc := NewItemService(db)

	it, err := svc.Create(context.Background(), "u1", validItemInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.Status != domain.ItemStatusPending {
		t.Fatalf("expected pending, got %s", it.Status)
	}
	// Category normalized to lowercase.
	if it.Category != "jackets" {
		t.Fatalf("category not normalized: %s", it.Category)
	}
	if len(it.Images) != 2 || !it.Images[0].IsPrimary {
		t.Fatalf("images not persisted: %+v", it.Images)
	}
}

func TestItemCreate_AdminAutoApproved(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "adm", func(u *domain.User) { u.Role = domain.RoleAdmin })
	svc := NewItemService(db)

	it, err := svc.Create(context.Background(), "adm", validItemInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.Status != domain.ItemStatusApproved {
		t.Fatalf("admin listing should be approved, got %s", it.Status)
	}
}

func TestItemCreate_UnapprovedOwnerRefused(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "u1", func(u *domain.User) { u.Status = domain.UserStatusPending })
	svc := NewItemService(db)

	if _, err := svc.Create(context.Background(), "u1", validItemInput()); !errors.Is(err, ErrAccountNotApproved) {
		t.Fatalf("expected ErrAccountNotApproved, got %v", err)
	}
}

func TestItemCreate_Validation(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "u1")
	svc := NewItemService(db)
	ctx := context.Background()

	in := validItemInput()
	in.Title = "   "
	if _, err := svc.Create(ctx, "u1", in); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("blank title: expected ErrMissingFields, got %v", err)
	}

	in = validItemInput()
	in.Images = nil
	if _, err := svc.Create(ctx, "u1", in); !errors.Is(err, ErrNoImages) {
		t.Fatalf("no images: expected ErrNoImages, got %v", err)
	}

	if _, err := svc.Create(ctx, "ghost", validItemInput()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown owner: expected ErrUserNotFound, got %v", err)
	}
}

func TestItemBrowsePage_OnlyApproved(t *testing.T) {
	db := newSvcDB(t)
	seedSwapItem(t, db, "a", "u1", domain.ItemStatusApproved)
	seedSwapItem(t, db, "p", "u1", domain.ItemStatusPending)
	seedSwapItem(t, db, "s", "u1", domain.ItemStatusSwapped)
	svc := NewItemService(db)

	items, total, err := svc.BrowsePage(context.Background(), "", "", 1, 20)
	if err != nil {
		t.Fatalf("BrowsePage: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("catalog leaked non-approved items: total=%d %+v", total, items)
	}
}

func TestItemBrowsePage_CategoryCaseInsensitive(t *testing.T) {
	db := newSvcDB(t)
	seedSwapItem(t, db, "a", "u1", domain.ItemStatusApproved) // category jackets
	svc := NewItemService(db)

	items, total, err := svc.BrowsePage(context.Background(), "JACKETS", "", 1, 20)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("uppercase category filter: total=%d len=%d err=%v", total, len(items), err)
	}
}

func TestItemFeatured_CapAndFlag(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		seedSwapItem(t, db, id, "u1", domain.ItemStatusApproved)
		if err := repo.SetItemFeatured(ctx, db, id, true); err != nil {
			t.Fatalf("feature %s: %v", id, err)
		}
	}
	seedSwapItem(t, db, "plain", "u1", domain.ItemStatusApproved)
	svc := NewItemService(db)

	items, err := svc.Featured(ctx)
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("featured strip must cap at 5, got %d", len(items))
	}
	for _, it := range items {
		if !it.IsFeatured {
			t.Fatalf("non-featured item in strip: %+v", it)
		}
	}
}

func TestItemSimilar_CategoryThenTags(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()

	base := &domain.Item{
		ID: "base", Title: "t", Description: "d", Category: "jackets", Size: "M",
		Condition: "good", Tags: "denim", Status: domain.ItemStatusApproved, OwnerID: "u1",
	}
	if err := db.Create(base).Error; err != nil {
		t.Fatalf("seed base: %v", err)
	}
	// Two same-category matches, one tag-only match in another category.
	seedSwapItem(t, db, "cat1", "u2", domain.ItemStatusApproved)
	seedSwapItem(t, db, "cat2", "u3", domain.ItemStatusApproved)
	tagOnly := &domain.Item{
		ID: "tag1", Title: "t", Description: "d", Category: "shirts", Size: "M",
		Condition: "good", Tags: "denim,retro", Status: domain.ItemStatusApproved, OwnerID: "u4",
	}
	if err := db.Create(tagOnly).Error; err != nil {
		t.Fatalf("seed tag match: %v", err)
	}

	svc := NewItemService(db)
	out, err := svc.Similar(ctx, "base")
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 related items, got %d: %+v", len(out), out)
	}
	ids := map[string]bool{}
	for _, it := range out {
		if it.ID == "base" {
			t.Fatalf("item related to itself")
		}
		ids[it.ID] = true
	}
	if !ids["cat1"] || !ids["cat2"] || !ids["tag1"] {
		t.Fatalf("missing expected matches: %v", ids)
	}

	if _, err := svc.Similar(ctx, "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemSetStatus_AdminGateAndValidation(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "adm", func(u *domain.User) { u.Role = domain.RoleAdmin })
	seedUser(t, db, "u1")
	seedSwapItem(t, db, "i1", "u1", domain.ItemStatusPending)
	svc := NewItemService(db)
	ctx := context.Background()

	if err := svc.SetStatus(ctx, "u1", "i1", domain.ItemStatusApproved); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("non-admin: expected ErrAdminRequired, got %v", err)
	}
	if err := svc.SetStatus(ctx, "adm", "i1", "banana"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetStatus(ctx, "adm", "missing", domain.ItemStatusApproved); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("missing item: expected ErrItemNotFound, got %v", err)
	}
	if err := svc.SetStatus(ctx, "adm", "i1", domain.ItemStatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	it, err := repo.GetItem(ctx, db, "i1")
	if err != nil || it.Status != domain.ItemStatusApproved {
		t.Fatalf("status not applied: %+v err=%v", it, err)
	}
}

func TestItemToggleFeatured_ApprovedOnly(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "adm", func(u *domain.User) { u.Role = domain.RoleAdmin })
	seedSwapItem(t, db, "ok", "u1", domain.ItemStatusApproved)
	seedSwapItem(t, db, "pend", "u1", domain.ItemStatusPending)
	svc := NewItemService(db)
	ctx := context.Background()

	on, err := svc.ToggleFeatured(ctx, "adm", "ok")
	if err != nil || !on {
		t.Fatalf("first toggle: on=%v err=%v", on, err)
	}
	off, err := svc.ToggleFeatured(ctx, "adm", "ok")
	if err != nil || off {
		t.Fatalf("second toggle: on=%v err=%v", off, err)
	}

	if _, err := svc.ToggleFeatured(ctx, "adm", "pend"); !errors.Is(err, ErrItemNotFeatureable) {
		t.Fatalf("expected ErrItemNotFeatureable, got %v", err)
	}
	if _, err := svc.ToggleFeatured(ctx, "nobody", "ok"); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
}

func TestCategories_FixedCatalog(t *testing.T) {
	if len(Categories) != 11 {
		t.Fatalf("expected 11 categories, got %d", len(Categories))
	}
	seen := map[string]bool{}
	for _, c := range Categories {
		if c.ID == "" || c.Name == "" {
			t.Fatalf("blank category entry: %+v", c)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate category id %s", c.ID)
		}
		seen[c.ID] = true
	}
	for _, want := range []string{"shirts", "jeans", "accessories"} {
		if !seen[want] {
			t.Fatalf("missing category %s", want)
		}
	}
}
