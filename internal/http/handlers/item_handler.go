// Item HTTP handlers.
//
// This file exposes REST endpoints for the item catalog:
//   - GET  /items                (browse approved items, paginated, ETag support)
//   - GET  /items/featured       (featured strip for the home page)
//   - GET  /items/categories     (fixed category catalog)
//   - GET  /items/{id}           (detail with images)
//   - GET  /items/{id}/similar   (related items)
//   - POST /items                (create listing)
//   - GET  /me/items             (own listings, any status)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"fmt"
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

// CreateItemRequest is the JSON payload for creating a listing. Images are
// client-supplied storage paths or URLs; the first entry becomes the primary
// image.
type CreateItemRequest struct {
	Title       string   `json:"title"       binding:"required,min=1,max=100"  example:"Vintage denim jacket"`
	Description string   `json:"description" binding:"required,min=1"          example:"Lightly worn, size M."`
	Category    string   `json:"category"    binding:"required"                example:"jackets"`
	Size        string   `json:"size"        binding:"required,max=20"         example:"M"`
	Condition   string   `json:"condition"   binding:"required,max=20"         example:"good"`
	Tags        string   `json:"tags"        example:"denim,blue,casual"`
	Images      []string `json:"images"      binding:"required,min=1"`
}

// ListItemsResponse wraps a page of items and pagination information.
type ListItemsResponse struct {
	Items      []domain.Item `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

//
// Handlers
//

// BrowseItems godoc
// @ID          browseItems
// @Summary     Browse the public catalog (paginated)
// @Description Returns a page of approved items, optionally narrowed by category and free-text search. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Items
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       category       query   string  false "Category filter"             example(jackets)
// @Param       q              query   string  false "Search in title/description" example(denim)
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListItemsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items [get]
func (h *Handlers) BrowseItems(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)
	category := c.Query("category")
	search := c.Query("q")

	// ETag pre-check (best effort), only for the unfiltered catalog view.
	var db *gorm.DB
	if svc, ok := h.itemSvc.(*services.ItemService); ok {
		db = svc.DB
	}
	if db != nil && category == "" && search == "" {
		count, maxTS, err := repo.ItemsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"items:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.itemSvc.BrowsePage(ctx, category, search, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListItemsResponse{
		Items:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// FeaturedItems godoc
// @ID          featuredItems
// @Summary     List featured items
// @Description Returns the featured approved items, newest first, capped at five.
// @Tags        Items
// @Produce     json
//
// @Success     200  {array}   domain.Item
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /items/featured [get]
func (h *Handlers) FeaturedItems(c *gin.Context) {
	items, err := h.itemSvc.Featured(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List item categories
// @Description Returns the fixed category catalog used by listings.
// @Tags        Items
// @Produce     json
//
// @Success     200  {array}  services.Category
// @Router      /items/categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	ok(c, http.StatusOK, services.Categories)
}

// GetItem godoc
// @ID          getItem
// @Summary     Get an item
// @Description Returns a single item with its images.
// @Tags        Items
// @Produce     json
//
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Item
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /items/{id} [get]
func (h *Handlers) GetItem(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}
	item, err := h.itemSvc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// SimilarItems godoc
// @ID          similarItems
// @Summary     List similar items
// @Description Returns up to four approved items related to the given one: same category first, topped up by tag matches.
// @Tags        Items
// @Produce     json
//
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     200  {array}   domain.Item
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /items/{id}/similar [get]
func (h *Handlers) SimilarItems(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}
	items, err := h.itemSvc.Similar(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateItem godoc
// @ID          createItem
// @Summary     Create a listing
// @Description Creates a listing owned by the current user. Listings enter the catalog pending moderation; admin listings are approved immediately.
// @Tags        Items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateItemRequest  true  "Listing payload"
//
// @Success     201  {object}  domain.Item
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse "Account pending approval"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /items [post]
func (h *Handlers) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	item, err := h.itemSvc.Create(c.Request.Context(), userID(c), services.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// MyItems godoc
// @ID          myItems
// @Summary     List own listings (paginated)
// @Description Returns a page of the current user's listings in any status.
// @Tags        Items
// @Produce     json
// @Security    BearerAuth
//
// @Param       page       query  int  false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListItemsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me/items [get]
func (h *Handlers) MyItems(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.itemSvc.OwnPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListItemsResponse{
		Items:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}
