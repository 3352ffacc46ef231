// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the service contracts consumed by the transport layer and
// the Handlers aggregate that binds them. Handlers are transport-thin: they
// validate input, call application services, and translate results (including
// the service error taxonomy) into HTTP responses.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-swap-backend/internal/auth"
	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/services"
	"github.com/tbourn/go-swap-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService defines account lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates a pending account (first ever account becomes admin).
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	// Authenticate verifies credentials; the identifier is email or username.
	Authenticate(ctx context.Context, emailOrUsername, password string) (*domain.User, error)
	// Get returns a user by ID.
	Get(ctx context.Context, id string) (*domain.User, error)
	// UpdateProfile applies partial profile changes for userID.
	UpdateProfile(ctx context.Context, userID string, in services.UpdateProfileInput) (*domain.User, error)
	// AdminPage lists accounts for moderation (admin-only, verified inside).
	AdminPage(ctx context.Context, actorID, status, search string, page, pageSize int) ([]domain.User, int64, error)
	// SetStatus force-sets an account's moderation status (admin-only).
	SetStatus(ctx context.Context, actorID, userID, status string) error
}

// ItemService defines listing lifecycle and catalog operations.
type ItemService interface {
	// Create persists a new listing owned by ownerID.
	Create(ctx context.Context, ownerID string, in services.CreateItemInput) (*domain.Item, error)
	// Get returns one item with its images.
	Get(ctx context.Context, id string) (*domain.Item, error)
	// BrowsePage returns a page of approved items for the public catalog.
	BrowsePage(ctx context.Context, category, search string, page, pageSize int) ([]domain.Item, int64, error)
	// Featured returns the featured approved items, newest first.
	Featured(ctx context.Context) ([]domain.Item, error)
	// Similar returns items related to the given one (category, then tags).
	Similar(ctx context.Context, id string) ([]domain.Item, error)
	// OwnPage returns a page of the user's own items, any status.
	OwnPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Item, int64, error)
	// AdminPage lists items for moderation (admin-only, verified inside).
	AdminPage(ctx context.Context, status, search string, page, pageSize int) ([]domain.Item, int64, error)
	// SetStatus force-sets an item's moderation status (admin-only).
	SetStatus(ctx context.Context, actorID, itemID, status string) error
	// ToggleFeatured flips the featured flag of an approved item (admin-only).
	ToggleFeatured(ctx context.Context, actorID, itemID string) (bool, error)
}

// SwapService defines the swap negotiation operations.
type SwapService interface {
	// Propose creates a pending swap on behalf of requesterID.
	Propose(ctx context.Context, requesterID, requesterItemID, providerItemID string) (*domain.Swap, error)
	// Respond decides a pending swap ("accept" or "reject").
	Respond(ctx context.Context, actingUserID, swapID, decision string) (*domain.Swap, error)
	// Get returns a swap with its participants and items (participants only).
	Get(ctx context.Context, userID, swapID string) (*domain.Swap, error)
	// ListPage returns a page of the user's swaps filtered by role and status.
	ListPage(ctx context.Context, userID, role, status string, page, pageSize int) ([]domain.Swap, int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for accounts, items, swaps, and the
// admin surface. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	userSvc UserService
	itemSvc ItemService
	swapSvc SwapService

	issuer  *auth.Issuer
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services and token
// issuer. idemTTL bounds how long swap-proposal idempotency records replay.
func New(userSvc UserService, itemSvc ItemService, swapSvc SwapService, issuer *auth.Issuer, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{
		userSvc: userSvc,
		itemSvc: itemSvc,
		swapSvc: swapSvc,
		issuer:  issuer,
		idemTTL: idemTTL,
	}
}

// userID extracts the authenticated user id from the Gin context (set by the
// auth middleware). Returns "" for unauthenticated requests; handlers on
// protected routes treat that as a 401.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

//
// Shared DTOs and helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// newPagination assembles the standard pagination envelope.
func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampPageSize(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), defaultPageSize)
	return
}
