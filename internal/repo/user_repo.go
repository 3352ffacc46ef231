// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser inserts a new user row. The user ID is a randomly generated
// UUID, CreatedAt is set to UTC, and status/role default to pending/user
// unless overridden by the caller (e.g. the bootstrap admin).
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = domain.UserStatusPending
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByLogin fetches a user by email or username (login forms accept
// either), or ErrNotFound if no account matches.
func GetUserByLogin(ctx context.Context, db *gorm.DB, emailOrUsername string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameTaken reports whether any user already holds the given username.
func UsernameTaken(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

// EmailTaken reports whether any user already holds the given email.
func EmailTaken(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		Count(&n).Error
	return n > 0, err
}

// CountUsers returns the total number of registered users. Used at
// registration time: the first account is promoted to an approved admin.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

// UpdateUser persists the mutable profile fields of u.
func UpdateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// UpdateUserStatus force-sets the moderation status of a user. If no rows are
// affected (user missing), it returns ErrNotFound.
func UpdateUserStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
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

// UserFilter narrows admin user listings.
type UserFilter struct {
	Status string // exact status, or empty/"all" for any
	Search string // matches username or email, substring
}

// CountUsersFiltered returns the number of users matching the filter.
func CountUsersFiltered(ctx context.Context, db *gorm.DB, f UserFilter) (int64, error) {
	var total int64
	err := userQuery(db.WithContext(ctx), f).Count(&total).Error
	return total, err
}

// ListUsersPage returns a page of users matching the filter, newest first.
func ListUsersPage(ctx context.Context, db *gorm.DB, f UserFilter, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	err := userQuery(db.WithContext(ctx), f).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// userQuery composes the shared WHERE clause for filtered user listings.
func userQuery(db *gorm.DB, f UserFilter) *gorm.DB {
	q := db.Model(&domain.User{})
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	return q
}
