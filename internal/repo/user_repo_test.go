package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-swap-backend/internal/domain"
)

func newUserRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("user_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateUser_DefaultsAndPersistence(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})

	u, err := CreateUser(context.Background(), db, &domain.User{
		Username:     "anna",
		Email:        "anna@example.com",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if u.Status != domain.UserStatusPending || u.Role != domain.RoleUser {
		t.Fatalf("expected pending/user defaults, got %s/%s", u.Status, u.Role)
	}

	var got domain.User
	if err := db.First(&got, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("load created user: %v", err)
	}
	if got.Username != "anna" || got.Email != "anna@example.com" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateUser_KeepsExplicitStatusAndRole(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})

	u, err := CreateUser(context.Background(), db, &domain.User{
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: "x",
		Status:       domain.UserStatusApproved,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Status != domain.UserStatusApproved || u.Role != domain.RoleAdmin {
		t.Fatalf("bootstrap fields overwritten: %+v", u)
	}
}

func TestGetUserByLogin_EmailOrUsername(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	seed := &domain.User{ID: "u1", Username: "anna", Email: "anna@example.com", PasswordHash: "x"}
	if err := db.Create(seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	byEmail, err := GetUserByLogin(context.Background(), db, "anna@example.com")
	if err != nil || byEmail.ID != "u1" {
		t.Fatalf("lookup by email: user=%v err=%v", byEmail, err)
	}
	byName, err := GetUserByLogin(context.Background(), db, "anna")
	if err != nil || byName.ID != "u1" {
		t.Fatalf("lookup by username: user=%v err=%v", byName, err)
	}
	if _, err := GetUserByLogin(context.Background(), db, "nobody"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUsernameAndEmailTaken(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	if err := db.Create(&domain.User{ID: "u1", Username: "anna", Email: "anna@example.com", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if taken, err := UsernameTaken(context.Background(), db, "anna"); err != nil || !taken {
		t.Fatalf("UsernameTaken(anna) = %v, %v", taken, err)
	}
	if taken, err := UsernameTaken(context.Background(), db, "free"); err != nil || taken {
		t.Fatalf("UsernameTaken(free) = %v, %v", taken, err)
	}
	if taken, err := EmailTaken(context.Background(), db, "anna@example.com"); err != nil || !taken {
		t.Fatalf("EmailTaken = %v, %v", taken, err)
	}
}

func TestUpdateUserStatus_MissingRow(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	err := UpdateUserStatus(context.Background(), db, "nope", domain.UserStatusApproved)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdateUserStatus_Success(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	if err := db.Create(&domain.User{ID: "u1", Username: "a", Email: "a@x.com", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateUserStatus(context.Background(), db, "u1", domain.UserStatusApproved); err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	var got domain.User
	if err := db.First(&got, "id = ?", "u1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.UserStatusApproved {
		t.Fatalf("status not updated: %s", got.Status)
	}
}

func TestListUsersPage_FilterAndSearch(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	users := []domain.User{
		{ID: "u1", Username: "anna", Email: "anna@x.com", PasswordHash: "x", Status: domain.UserStatusPending},
		{ID: "u2", Username: "bob", Email: "bob@x.com", PasswordHash: "x", Status: domain.UserStatusApproved},
		{ID: "u3", Username: "annette", Email: "annette@x.com", PasswordHash: "x", Status: domain.UserStatusPending},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("seed %s: %v", users[i].ID, err)
		}
	}

	f := UserFilter{Status: domain.UserStatusPending, Search: "ann"}
	total, err := CountUsersFiltered(context.Background(), db, f)
	if err != nil || total != 2 {
		t.Fatalf("CountUsersFiltered = %d, %v", total, err)
	}
	page, err := ListUsersPage(context.Background(), db, f, 0, 10)
	if err != nil || len(page) != 2 {
		t.Fatalf("ListUsersPage len=%d err=%v", len(page), err)
	}
	for _, u := range page {
		if u.Status != domain.UserStatusPending {
			t.Fatalf("filter leak: %+v", u)
		}
	}
}

func TestCountUsers_Empty(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	n, err := CountUsers(context.Background(), db)
	if err != nil || n != 0 {
		t.Fatalf("CountUsers = %d, %v", n, err)
	}
}
