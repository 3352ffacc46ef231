package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tbourn/go-swap-backend/internal/domain"
)

func registerInput(name string) RegisterInput {
	return RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "hunter2hunter2",
	}
}

func TestRegister_FirstUserBecomesApprovedAdmin(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerInput("founder"))
	if err != nil {
		t.Fatalf("Register first: %v", err)
	}
	if first.Role != domain.RoleAdmin || first.Status != domain.UserStatusApproved {
		t.Fatalf("bootstrap account not admin/approved: %+v", first)
	}

	second, err := svc.Register(ctx, registerInput("member"))
	if err != nil {
		t.Fatalf("Register second: %v", err)
	}
	if second.Role != domain.RoleUser || second.Status != domain.UserStatusPending {
		t.Fatalf("regular account wrong defaults: %+v", second)
	}

	// Password is stored hashed, never plaintext.
	if second.PasswordHash == "hunter2hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(second.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestRegister_ValidationAndUniqueness(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "x"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	if _, err := svc.Register(ctx, registerInput("anna")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dup := registerInput("anna")
	dup.Email = "other@example.com"
	if _, err := svc.Register(ctx, dup); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	dup = registerInput("bella")
	dup.Email = "anna@example.com"
	if _, err := svc.Register(ctx, dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_EmailLowercased(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)

	in := registerInput("anna")
	in.Email = "Anna@Example.COM"
	u, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "anna@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}
}

func TestAuthenticate_EmailOrUsername(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("anna")); err != nil { // first user: approved admin
		t.Fatalf("seed: %v", err)
	}

	for _, ident := range []string{"anna", "anna@example.com"} {
		u, err := svc.Authenticate(ctx, ident, "hunter2hunter2")
		if err != nil {
			t.Fatalf("Authenticate(%s): %v", ident, err)
		}
		if u.Username != "anna" {
			t.Fatalf("wrong account: %+v", u)
		}
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("founder")); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := svc.Register(ctx, registerInput("pendinguser")); err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "ghost", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "founder", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: expected ErrInvalidCredentials, got %v", err)
	}
	// Correct credentials but unapproved: refused at the moderation gate.
	if _, err := svc.Authenticate(ctx, "pendinguser", "hunter2hunter2"); !errors.Is(err, ErrAccountNotApproved) {
		t.Fatalf("pending account: expected ErrAccountNotApproved, got %v", err)
	}
}

func TestAuthenticate_AdminBypassesApprovalGate(t *testing.T) {
	db := newSvcDB(t)
	// Pending admin (unusual, but the role must win over the gate).
	seedUser(t, db, "adm", func(u *domain.User) {
		u.Role = domain.RoleAdmin
		u.Status = domain.UserStatusPending
		hash, _ := bcrypt.GenerateFromPassword([]byte("pw12345678"), bcrypt.MinCost)
		u.PasswordHash = string(hash)
	})
	svc := NewUserService(db)

	if _, err := svc.Authenticate(context.Background(), "user-adm", "pw12345678"); err != nil {
		t.Fatalf("pending admin refused: %v", err)
	}
}

func TestUpdateProfile_PartialAndUniqueness(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u1, err := svc.Register(ctx, registerInput("anna"))
	if err != nil {
		t.Fatalf("seed anna: %v", err)
	}
	if _, err := svc.Register(ctx, registerInput("bella")); err != nil {
		t.Fatalf("seed bella: %v", err)
	}

	city := "Athens"
	updated, err := svc.UpdateProfile(ctx, u1.ID, UpdateProfileInput{City: &city})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.City != "Athens" || updated.Username != "anna" {
		t.Fatalf("partial update wrong: %+v", updated)
	}

	taken := "bella"
	if _, err := svc.UpdateProfile(ctx, u1.ID, UpdateProfileInput{Username: &taken}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	blank := "  "
	if _, err := svc.UpdateProfile(ctx, u1.ID, UpdateProfileInput{Username: &blank}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, "ghost", UpdateProfileInput{City: &city}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserSetStatus_ModerationGate(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin, err := svc.Register(ctx, registerInput("founder"))
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	member, err := svc.Register(ctx, registerInput("member"))
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}

	if err := svc.SetStatus(ctx, member.ID, admin.ID, domain.UserStatusRejected); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("non-admin moderation: expected ErrAdminRequired, got %v", err)
	}
	if err := svc.SetStatus(ctx, admin.ID, member.ID, "frozen"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetStatus(ctx, admin.ID, "ghost", domain.UserStatusApproved); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing target: expected ErrUserNotFound, got %v", err)
	}
	if err := svc.SetStatus(ctx, admin.ID, member.ID, domain.UserStatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := svc.Get(ctx, member.ID)
	if err != nil || got.Status != domain.UserStatusApproved {
		t.Fatalf("status not applied: %+v err=%v", got, err)
	}
}

func TestUserAdminPage_FilterAndGuard(t *testing.T) {
	db := newSvcDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin, err := svc.Register(ctx, registerInput("founder"))
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := svc.Register(ctx, registerInput("member")); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	if _, _, err := svc.AdminPage(ctx, "ghost", "", "", 1, 20); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}

	users, total, err := svc.AdminPage(ctx, admin.ID, domain.UserStatusPending, "", 1, 20)
	if err != nil || total != 1 || len(users) != 1 || users[0].Username != "member" {
		t.Fatalf("pending page: total=%d users=%+v err=%v", total, users, err)
	}
}

func TestRequireAdmin(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "adm", func(u *domain.User) { u.Role = domain.RoleAdmin })
	seedUser(t, db, "u1")
	ctx := context.Background()

	if u, err := RequireAdmin(ctx, db, "adm"); err != nil || u.ID != "adm" {
		t.Fatalf("admin refused: %+v err=%v", u, err)
	}
	if _, err := RequireAdmin(ctx, db, "u1"); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired for non-admin, got %v", err)
	}
	if _, err := RequireAdmin(ctx, db, "ghost"); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired for missing user, got %v", err)
	}
}
