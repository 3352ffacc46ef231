// Package services – SwapService
//
// This file implements the swap negotiation engine: proposing a swap between
// two items and deciding it (accept/reject). It enforces ownership and
// eligibility rules, derives the provider from the provider item's owner, and
// keeps the single-commitment invariant: an item transitions to swapped at
// most once, even under concurrent accepts of swaps sharing that item.
//
// Every check-and-mutate sequence runs inside a single transaction. The
// accept path additionally uses guarded UPDATEs (status predicates in the
// WHERE clause, RowsAffected verified) so a second concurrent accept rolls
// back instead of double-committing.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
)

// Swap response decisions accepted by Respond.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// SwapService implements the use-cases around swap negotiation. It is
// context-aware and safe for concurrent use; each mutating call opens its own
// transaction on the configured handle.
type SwapService struct {
	// DB is the database handle used for all swap operations.
	DB *gorm.DB
}

// NewSwapService constructs a SwapService bound to db.
func NewSwapService(db *gorm.DB) *SwapService { return &SwapService{DB: db} }

// Propose creates a pending swap offering requesterItemID against
// providerItemID on behalf of requesterID.
//
// Validation, in order:
//  1. Both items must exist (ErrItemNotFound).
//  2. The requester must own the requester item (ErrNotItemOwner).
//  3. The two items must belong to different users (ErrSelfSwap).
//  4. The provider item must be approved (ErrItemNotApproved).
//  5. No pending swap may already exist for the exact tuple (ErrDuplicateSwap).
//
// The provider is derived from the provider item's owner, never from caller
// input, which closes the impersonation vector. The duplicate check and the
// insert run in one transaction; the partial unique index on pending tuples
// backs the check, and its violation is also mapped to ErrDuplicateSwap.
func (s *SwapService) Propose(ctx context.Context, requesterID, requesterItemID, providerItemID string) (*domain.Swap, error) {
	if strings.TrimSpace(requesterItemID) == "" || strings.TrimSpace(providerItemID) == "" {
		return nil, ErrMissingFields
	}

	var created *domain.Swap
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requesterItem, err := repo.GetItem(ctx, tx, requesterItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if requesterItem.OwnerID != requesterID {
			return ErrNotItemOwner
		}

		providerItem, err := repo.GetItem(ctx, tx, providerItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if requesterItem.OwnerID == providerItem.OwnerID {
			return ErrSelfSwap
		}
		if providerItem.Status != domain.ItemStatusApproved {
			return ErrItemNotApproved
		}

		// Provider identity comes from the item, not the request.
		providerID := providerItem.OwnerID

		exists, err := repo.PendingSwapExists(ctx, tx, requesterID, providerID, requesterItemID, providerItemID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSwap
		}

		created, err = repo.CreateSwap(ctx, tx, requesterID, providerID, requesterItemID, providerItemID)
		if err != nil {
			if isDuplicate(err) {
				return ErrDuplicateSwap
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Respond decides a pending swap on behalf of actingUserID.
//
// Semantics:
//   - decision must be "accept" or "reject" (ErrInvalidDecision).
//   - The swap must exist (ErrSwapNotFound).
//   - Only the provider may respond (ErrNotProvider).
//   - The swap must still be pending (ErrSwapDecided).
//   - accept: the swap becomes accepted and both items become swapped, all in
//     one transaction; if either item was already committed by a concurrent
//     acceptance the whole transaction rolls back with ErrItemUnavailable.
//   - reject: the swap becomes rejected with no item side effects.
//
// The status transition itself is a guarded UPDATE (WHERE status = 'pending'),
// so two concurrent responders cannot both decide the same swap.
func (s *SwapService) Respond(ctx context.Context, actingUserID, swapID, decision string) (*domain.Swap, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, ErrInvalidDecision
	}

	var decided *domain.Swap
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sw, err := repo.GetSwap(ctx, tx, swapID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSwapNotFound
			}
			return err
		}
		if sw.ProviderID != actingUserID {
			return ErrNotProvider
		}
		if sw.Decided() {
			return ErrSwapDecided
		}

		target := domain.SwapStatusRejected
		if decision == DecisionAccept {
			target = domain.SwapStatusAccepted
		}

		n, err := repo.DecideSwap(ctx, tx, sw.ID, target)
		if err != nil {
			return err
		}
		if n == 0 {
			// Lost the race to another responder.
			return ErrSwapDecided
		}

		if decision == DecisionAccept {
			for _, itemID := range []string{sw.RequesterItemID, sw.ProviderItemID} {
				n, err := repo.MarkItemSwapped(ctx, tx, itemID)
				if err != nil {
					return err
				}
				if n == 0 {
					// Item already committed to another accepted swap;
					// roll back the whole acceptance.
					return ErrItemUnavailable
				}
			}
		}

		sw.Status = target
		decided = sw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// Get returns a swap with its participants and items, restricted to the two
// involved users.
func (s *SwapService) Get(ctx context.Context, userID, swapID string) (*domain.Swap, error) {
	sw, err := repo.GetSwapDetail(ctx, s.DB, swapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	if sw.RequesterID != userID && sw.ProviderID != userID {
		return nil, ErrNotParticipant
	}
	return sw, nil
}

// ListPage returns a page of the user's swaps filtered by role and status,
// plus the total count. Invalid page/pageSize values fall back to defaults.
func (s *SwapService) ListPage(ctx context.Context, userID, role, status string, page, pageSize int) ([]domain.Swap, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	f := repo.SwapFilter{UserID: userID, Role: role, Status: status}

	total, err := repo.CountSwaps(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Swap{}, 0, nil
	}

	items, err := repo.ListSwapsPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
	return items, total, err
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
