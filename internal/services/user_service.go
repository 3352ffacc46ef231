// Package services – UserService
//
// This file implements the identity directory: registration, credential
// verification, profile reads/updates, and the admin moderation operations on
// accounts. Passwords are hashed with bcrypt; token issuance itself lives in
// internal/auth and is wired at the handler layer.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
)

// UserService provides account lifecycle operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewUserService constructs a UserService bound to db.
func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

// RegisterInput carries the caller-supplied fields for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Gender   string
}

// Register creates a new account in pending status. Username and email must
// be unique. The very first account on a fresh database is promoted to an
// approved admin so the instance can be bootstrapped without manual SQL.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := repo.UsernameTaken(ctx, tx, in.Username); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}
		if taken, err := repo.EmailTaken(ctx, tx, in.Email); err != nil {
			return err
		} else if taken {
			return ErrEmailTaken
		}

		u := &domain.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: string(hash),
			Gender:       strings.TrimSpace(in.Gender),
		}

		total, err := repo.CountUsers(ctx, tx)
		if err != nil {
			return err
		}
		if total == 0 {
			u.Role = domain.RoleAdmin
			u.Status = domain.UserStatusApproved
		}

		created, err = repo.CreateUser(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Authenticate verifies credentials for login. The identifier may be an email
// or a username. Unapproved non-admin accounts are refused even with correct
// credentials.
func (s *UserService) Authenticate(ctx context.Context, emailOrUsername, password string) (*domain.User, error) {
	u, err := repo.GetUserByLogin(ctx, s.DB, strings.TrimSpace(emailOrUsername))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsApproved() && !u.IsAdmin() {
		return nil, ErrAccountNotApproved
	}
	return u, nil
}

// Get returns the user record for id, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfileInput carries the optional profile fields; nil pointers leave
// the stored value untouched.
type UpdateProfileInput struct {
	Username *string
	City     *string
	Address  *string
	Bio      *string
}

// UpdateProfile applies the provided profile fields to the user's record.
// A username change is checked for uniqueness in the same transaction as the
// write.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	var updated *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.GetUser(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if in.Username != nil {
			name := strings.TrimSpace(*in.Username)
			if name == "" {
				return ErrMissingFields
			}
			if name != u.Username {
				if taken, err := repo.UsernameTaken(ctx, tx, name); err != nil {
					return err
				} else if taken {
					return ErrUsernameTaken
				}
				u.Username = name
			}
		}
		if in.City != nil {
			u.City = strings.TrimSpace(*in.City)
		}
		if in.Address != nil {
			u.Address = strings.TrimSpace(*in.Address)
		}
		if in.Bio != nil {
			u.Bio = strings.TrimSpace(*in.Bio)
		}

		if err := repo.UpdateUser(ctx, tx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdminPage returns a page of all accounts for moderation, optionally
// narrowed by status and search. Admin-only.
func (s *UserService) AdminPage(ctx context.Context, actorID, status, search string, page, pageSize int) ([]domain.User, int64, error) {
	if _, err := RequireAdmin(ctx, s.DB, actorID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	f := repo.UserFilter{Status: status, Search: strings.TrimSpace(search)}

	total, err := repo.CountUsersFiltered(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	users, err := repo.ListUsersPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
	return users, total, err
}

// SetStatus force-sets an account's moderation status. Admin-only; the
// target must be approved or rejected.
func (s *UserService) SetStatus(ctx context.Context, actorID, userID, status string) error {
	if _, err := RequireAdmin(ctx, s.DB, actorID); err != nil {
		return err
	}
	if !domain.ValidUserModeration(status) {
		return ErrInvalidStatus
	}
	if err := repo.UpdateUserStatus(ctx, s.DB, userID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
