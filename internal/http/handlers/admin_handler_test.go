package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/repo"
)

func TestAdminListUsersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admTok := env.seedEnvUser(t, "adm", domain.RoleAdmin, domain.UserStatusApproved)
	env.seedEnvUser(t, "u1", domain.RoleUser, domain.UserStatusPending)

	w := env.do(t, http.MethodGet, "/admin/users?status=pending", admTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp ListUsersResponse
	decode(t, w, &resp)
	if resp.Pagination.Total != 1 || len(resp.Users) != 1 || resp.Users[0].ID != "u1" {
		t.Fatalf("pending page wrong: %+v", resp)
	}

	// Non-admin role claims are stopped at the route gate.
	userTok := env.seedEnvUser(t, "u2", domain.RoleUser, domain.UserStatusApproved)
	if w := env.do(t, http.MethodGet, "/admin/users", userTok, nil, nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: %d", w.Code)
	}
}

func TestAdminEndpoints_StaleRoleClaimRefused(t *testing.T) {
	env := newTestEnv(t)
	// Token claims admin, but the database row says regular user: the services'
	// database re-check must win over the claim.
	env.seedEnvUser(t, "sneak", domain.RoleUser, domain.UserStatusApproved)
	staleTok, err := env.issuer.IssueAccess("sneak", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if w := env.do(t, http.MethodGet, "/admin/users", staleTok, nil, nil); w.Code != http.StatusForbidden {
		t.Fatalf("stale claim listed users: %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/admin/stats", staleTok, nil, nil); w.Code != http.StatusForbidden {
		t.Fatalf("stale claim read stats: %d", w.Code)
	}
}

func TestAdminSetUserStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admTok := env.seedEnvUser(t, "adm", domain.RoleAdmin, domain.UserStatusApproved)

	target := uuid.NewString()
	u := &domain.User{ID: target, Username: "member", Email: "m@example.com", PasswordHash: "x", Status: domain.UserStatusPending}
	if err := env.db.Create(u).Error; err != nil {
		t.Fatalf("seed target: %v", err)
	}

	w := env.do(t, http.MethodPut, "/admin/users/"+target+"/status", admTok, SetStatusRequest{Status: "approved"}, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got domain.User
	if err := env.db.First(&got, "id = ?", target).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.UserStatusApproved {
		t.Fatalf("moderation not applied: %s", got.Status)
	}

	// Reserved/unknown statuses are rejected.
	if w := env.do(t, http.MethodPut, "/admin/users/"+target+"/status", admTok, SetStatusRequest{Status: "frozen"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: %d", w.Code)
	}
	// Non-UUID target.
	if w := env.do(t, http.MethodPut, "/admin/users/abc/status", admTok, SetStatusRequest{Status: "approved"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("non-uuid target: %d", w.Code)
	}
	// Missing target.
	missing := uuid.NewString()
	if w := env.do(t, http.MethodPut, "/admin/users/"+missing+"/status", admTok, SetStatusRequest{Status: "approved"}, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing target: %d", w.Code)
	}
}

func TestAdminItemModerationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admTok := env.seedEnvUser(t, "adm", domain.RoleAdmin, domain.UserStatusApproved)
	env.seedEnvUser(t, "u1", domain.RoleUser, domain.UserStatusApproved)
	item := env.seedEnvItem(t, "u1", domain.ItemStatusPending)

	// Moderation queue shows the pending item.
	w := env.do(t, http.MethodGet, "/admin/items?status=pending", admTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d: %s", w.Code, w.Body.String())
	}
	var listResp ListItemsResponse
	decode(t, w, &listResp)
	if listResp.Pagination.Total != 1 || listResp.Items[0].ID != item {
		t.Fatalf("queue wrong: %+v", listResp)
	}

	// Featuring a pending item is refused.
	if w := env.do(t, http.MethodPost, "/admin/items/"+item+"/feature", admTok, nil, nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("feature pending: %d", w.Code)
	}

	// Approve, then feature.
	if w := env.do(t, http.MethodPut, "/admin/items/"+item+"/status", admTok, SetStatusRequest{Status: "approved"}, nil); w.Code != http.StatusNoContent {
		t.Fatalf("approve: %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/admin/items/"+item+"/feature", admTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("feature: %d: %s", w.Code, w.Body.String())
	}
	var feat FeatureResponse
	decode(t, w, &feat)
	if !feat.IsFeatured || feat.ItemID != item {
		t.Fatalf("feature response wrong: %+v", feat)
	}

	// Toggling again clears the flag.
	w = env.do(t, http.MethodPost, "/admin/items/"+item+"/feature", admTok, nil, nil)
	decode(t, w, &feat)
	if feat.IsFeatured {
		t.Fatalf("second toggle did not clear flag")
	}
}

func TestAdminStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admTok := env.seedEnvUser(t, "adm", domain.RoleAdmin, domain.UserStatusApproved)
	env.seedEnvUser(t, "u1", domain.RoleUser, domain.UserStatusPending)
	env.seedEnvItem(t, "u1", domain.ItemStatusApproved)

	w := env.do(t, http.MethodGet, "/admin/stats", admTok, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var stats repo.PlatformStats
	decode(t, w, &stats)
	if stats.TotalUsers != 2 || stats.PendingUsers != 1 || stats.TotalItems != 1 {
		t.Fatalf("counters wrong: %+v", stats)
	}
}
