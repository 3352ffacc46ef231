// Admin HTTP handlers.
//
// This file exposes the moderation surface:
//   - GET  /admin/users                    (list accounts, paginated)
//   - PUT  /admin/users/{id}/status        (approve/reject an account)
//   - GET  /admin/items                    (list items, paginated)
//   - PUT  /admin/items/{id}/status        (approve/reject an item)
//   - POST /admin/items/{id}/feature       (toggle featured flag)
//   - GET  /admin/stats                    (platform counters)
//
// Routes are mounted behind the auth middleware with an admin role gate, but
// the authoritative admin check lives in the services (RequireAdmin re-reads
// the actor's row), so a stale role claim cannot moderate.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
	"github.com/tbourn/go-swap-backend/internal/services"
)

//
// DTOs
//

// SetStatusRequest is the JSON payload for a moderation decision. The target
// status must be "approved" or "rejected".
type SetStatusRequest struct {
	Status string `json:"status" binding:"required" example:"approved"`
}

// ListUsersResponse wraps a page of accounts and pagination information.
type ListUsersResponse struct {
	Users      []domain.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// FeatureResponse reports the featured flag after a toggle.
type FeatureResponse struct {
	ItemID     string `json:"item_id"`
	IsFeatured bool   `json:"is_featured"`
}

//
// Handlers
//

// AdminListUsers godoc
// @ID          adminListUsers
// @Summary     List accounts (admin)
// @Description Returns a page of accounts, optionally filtered by status and username/email search.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       status     query  string  false "Status filter"  Enums(pending, approved, rejected)
// @Param       q          query  string  false "Search username/email"
// @Param       page       query  int     false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListUsersResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Admin required"
// @Router      /admin/users [get]
func (h *Handlers) AdminListUsers(c *gin.Context) {
	page, pageSize := clampPagination(c)
	users, total, err := h.userSvc.AdminPage(c.Request.Context(), userID(c), c.Query("status"), c.Query("q"), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: newPagination(page, pageSize, total),
	})
}

// AdminSetUserStatus godoc
// @ID          adminSetUserStatus
// @Summary     Moderate an account (admin)
// @Description Force-sets an account's status to approved or rejected.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "User ID (UUID)"  format(uuid)
// @Param       body  body  handlers.SetStatusRequest  true  "Moderation decision"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Admin required"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Router      /admin/users/{id}/status [put]
func (h *Handlers) AdminSetUserStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.userSvc.SetStatus(c.Request.Context(), userID(c), id, req.Status); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// AdminListItems godoc
// @ID          adminListItems
// @Summary     List items (admin)
// @Description Returns a page of items in any status, optionally filtered by status and title/description search.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       status     query  string  false "Status filter"  Enums(pending, approved, rejected, swapped)
// @Param       q          query  string  false "Search title/description"
// @Param       page       query  int     false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListItemsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Admin required"
// @Router      /admin/items [get]
func (h *Handlers) AdminListItems(c *gin.Context) {
	// The service's AdminPage does not take the actor; gate here against the
	// DB the same way the other admin operations do.
	if db := h.adminDB(); db != nil {
		if _, err := services.RequireAdmin(c.Request.Context(), db, userID(c)); err != nil {
			failService(c, err)
			return
		}
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.itemSvc.AdminPage(c.Request.Context(), c.Query("status"), c.Query("q"), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListItemsResponse{
		Items:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// AdminSetItemStatus godoc
// @ID          adminSetItemStatus
// @Summary     Moderate an item (admin)
// @Description Force-sets an item's status to approved or rejected, from any source status.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Item ID (UUID)"  format(uuid)
// @Param       body  body  handlers.SetStatusRequest  true  "Moderation decision"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Admin required"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Router      /admin/items/{id}/status [put]
func (h *Handlers) AdminSetItemStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.itemSvc.SetStatus(c.Request.Context(), userID(c), id, req.Status); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// AdminToggleFeatured godoc
// @ID          adminToggleFeatured
// @Summary     Toggle an item's featured flag (admin)
// @Description Flips the featured flag on an approved item. Non-approved items are refused.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.FeatureResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Admin required"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Failure     422  {object} handlers.ErrorResponse "Item not approved"
// @Router      /admin/items/{id}/feature [post]
func (h *Handlers) AdminToggleFeatured(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}
	featured, err := h.itemSvc.ToggleFeatured(c.Request.Context(), userID(c), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, FeatureResponse{ItemID: id, IsFeatured: featured})
}

// AdminStats godoc
// @ID          adminStats
// @Summary     Platform counters (admin)
// @Description Returns moderation-relevant counters across users, items, and swaps.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} repo.PlatformStats
// @Failure     403  {object} handlers.ErrorResponse "Admin required"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/stats [get]
func (h *Handlers) AdminStats(c *gin.Context) {
	db := h.adminDB()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "stats unavailable")
		return
	}
	if _, err := services.RequireAdmin(c.Request.Context(), db, userID(c)); err != nil {
		failService(c, err)
		return
	}
	stats, err := repo.GetPlatformStats(c.Request.Context(), db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not collect stats")
		return
	}
	ok(c, http.StatusOK, stats)
}

// adminDB exposes the underlying GORM handle for admin-only aggregate reads.
func (h *Handlers) adminDB() *gorm.DB {
	if svc, ok := h.userSvc.(*services.UserService); ok {
		return svc.DB
	}
	return nil
}
