// Package services – moderation gate
//
// This file implements the authorization guard shared by all admin-only
// operations. Every moderation entry point calls RequireAdmin before touching
// state; the guard is an explicit function call at the top of the operation
// rather than middleware so the check is visible at the call site and covered
// by service-level tests.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
)

// RequireAdmin resolves the acting user and verifies the admin role.
// It returns the user on success so callers can reuse the record, or
// ErrAdminRequired when the actor is missing or lacks the role.
func RequireAdmin(ctx context.Context, db *gorm.DB, actorID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, db, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminRequired
		}
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, ErrAdminRequired
	}
	return u, nil
}
