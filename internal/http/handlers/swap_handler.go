// Swap HTTP handlers.
//
// This file exposes REST endpoints for swap negotiation:
//   - POST /swaps                (propose; supports Idempotency-Key)
//   - GET  /swaps                (list own swaps, paginated)
//   - GET  /swaps/{id}           (detail, participants only)
//   - POST /swaps/{id}/respond   (provider accepts or rejects)
//
// The propose endpoint honors the Idempotency-Key header: a retried request
// with the same key replays the previously created swap instead of creating a
// duplicate (or tripping the pending-tuple conflict).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/http/middleware"
	"github.com/tbourn/go-swap-backend/internal/repo"
	"github.com/tbourn/go-swap-backend/internal/services"
)

//
// DTOs
//

// ProposeSwapRequest is the JSON payload for proposing a swap. The provider is
// derived server-side from the provider item's owner and is never accepted
// from the client.
type ProposeSwapRequest struct {
	RequesterItemID string `json:"requester_item_id" binding:"required" format:"uuid"`
	ProviderItemID  string `json:"provider_item_id"  binding:"required" format:"uuid"`
}

// RespondSwapRequest is the JSON payload for deciding a pending swap.
type RespondSwapRequest struct {
	// Decision must be "accept" or "reject".
	Decision string `json:"decision" binding:"required" example:"accept"`
}

// ListSwapsResponse wraps a page of swaps and pagination information.
type ListSwapsResponse struct {
	Swaps      []domain.Swap `json:"swaps"`
	Pagination Pagination    `json:"pagination"`
}

// swapDB exposes the underlying GORM handle when the service is the concrete
// implementation; used for idempotency record reads/writes which are a
// transport concern, not a negotiation rule.
func (h *Handlers) swapDB() *gorm.DB {
	if svc, ok := h.swapSvc.(*services.SwapService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// ProposeSwap godoc
// @ID          proposeSwap
// @Summary     Propose a swap
// @Description Offers one of the caller's items against another user's approved item. Supports safe retries via the Idempotency-Key header: a replayed key returns the originally created swap.
// @Tags        Swaps
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       body             body    handlers.ProposeSwapRequest  true  "Proposal payload"
//
// @Success     201  {object}  domain.Swap
// @Success     200  {object}  domain.Swap  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request / self swap"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse "Not the item owner"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Failure     409  {object}  handlers.ErrorResponse "Duplicate pending proposal"
// @Failure     422  {object}  handlers.ErrorResponse "Provider item not available"
// @Router      /swaps [post]
func (h *Handlers) ProposeSwap(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	var req ProposeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// Serve a replay before touching the negotiation engine.
	key, hasKey := middleware.GetIdempotencyKey(c)
	db := h.swapDB()
	if hasKey && db != nil && middleware.IsReplay(c) {
		if rec, err := repo.GetIdempotency(ctx, db, uid, key, time.Now().UTC()); err == nil {
			if sw, err := h.swapSvc.Get(ctx, uid, rec.SwapID); err == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, sw)
				return
			}
		}
		// Fall through: the stored swap could not be loaded; process normally.
	}

	sw, err := h.swapSvc.Propose(ctx, uid, req.RequesterItemID, req.ProviderItemID)
	if err != nil {
		failService(c, err)
		return
	}

	// Persist the idempotency record best-effort; a failure here must not
	// undo an already-committed proposal.
	if hasKey && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, uid, key, sw.ID, http.StatusCreated, h.idemTTL); err != nil && err != repo.ErrDuplicate {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not saved")
		}
	}

	ok(c, http.StatusCreated, sw)
}

// ListSwaps godoc
// @ID          listSwaps
// @Summary     List own swaps (paginated)
// @Description Returns a page of swaps the current user participates in, optionally filtered by role (requester|provider) and status.
// @Tags        Swaps
// @Produce     json
// @Security    BearerAuth
//
// @Param       role       query  string  false "Participation filter"  Enums(requester, provider)
// @Param       status     query  string  false "Status filter"         Enums(pending, accepted, rejected)
// @Param       page       query  int     false "Page number"           minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"        minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListSwapsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /swaps [get]
func (h *Handlers) ListSwaps(c *gin.Context) {
	page, pageSize := clampPagination(c)
	swaps, total, err := h.swapSvc.ListPage(c.Request.Context(), userID(c), c.Query("role"), c.Query("status"), page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListSwapsResponse{
		Swaps:      swaps,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetSwap godoc
// @ID          getSwap
// @Summary     Get a swap
// @Description Returns a swap with its participants and items. Only the requester and the provider may view it.
// @Tags        Swaps
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Swap ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Swap
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse "Swap not found"
// @Router      /swaps/{id} [get]
func (h *Handlers) GetSwap(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "swap id must be a UUID")
		return
	}
	sw, err := h.swapSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, sw)
}

// RespondSwap godoc
// @ID          respondSwap
// @Summary     Respond to a swap
// @Description Accepts or rejects a pending swap. Only the provider may respond; accepting marks both items swapped atomically.
// @Tags        Swaps
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Swap ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RespondSwapRequest  true  "Decision payload"
//
// @Success     200  {object}  domain.Swap
// @Failure     400  {object}  handlers.ErrorResponse "Bad request / invalid decision"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse "Not the provider"
// @Failure     404  {object}  handlers.ErrorResponse "Swap not found"
// @Failure     422  {object}  handlers.ErrorResponse "Already decided / item unavailable"
// @Router      /swaps/{id}/respond [post]
func (h *Handlers) RespondSwap(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "swap id must be a UUID")
		return
	}

	var req RespondSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sw, err := h.swapSvc.Respond(c.Request.Context(), userID(c), id, req.Decision)
	if err != nil {
		failService(c, err)
		return
	}

	outcome := "rejected"
	if sw.Status == domain.SwapStatusAccepted {
		outcome = "accepted"
	}
	middleware.CountSwapDecision(outcome)

	ok(c, http.StatusOK, sw)
}
