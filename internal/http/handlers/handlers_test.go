package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/auth"
	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/http/middleware"
	"github.com/tbourn/go-swap-backend/internal/repo"
	"github.com/tbourn/go-swap-backend/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// testEnv wires real services over a temp sqlite database behind a minimal
// router that mirrors the production middleware chain for protected routes.
type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
	issuer *auth.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), fmt.Sprintf("h_%d.db", time.Now().UnixNano())))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	issuer := auth.NewIssuer("test-secret", time.Hour, 24*time.Hour)
	h := New(services.NewUserService(db), services.NewItemService(db), services.NewSwapService(db), issuer, time.Hour)

	idemLookup := func(ctx context.Context, uid, key string, now time.Time) (bool, error) {
		if _, err := repo.GetIdempotency(ctx, db, uid, key, now); err != nil {
			return false, nil
		}
		return true, nil
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.GET("/items", h.BrowseItems)
	r.GET("/items/featured", h.FeaturedItems)
	r.GET("/items/categories", h.ListCategories)
	r.GET("/items/:id", h.GetItem)
	r.GET("/items/:id/similar", h.SimilarItems)

	authed := r.Group("")
	authed.Use(
		middleware.RequireAuth(issuer),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idemLookup),
	)
	authed.GET("/me", h.GetProfile)
	authed.PUT("/me", h.UpdateProfile)
	authed.GET("/me/items", h.MyItems)
	authed.POST("/items", h.CreateItem)
	authed.POST("/swaps", h.ProposeSwap)
	authed.GET("/swaps", h.ListSwaps)
	authed.GET("/swaps/:id", h.GetSwap)
	authed.POST("/swaps/:id/respond", h.RespondSwap)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/users", h.AdminListUsers)
	admin.PUT("/users/:id/status", h.AdminSetUserStatus)
	admin.GET("/items", h.AdminListItems)
	admin.PUT("/items/:id/status", h.AdminSetItemStatus)
	admin.POST("/items/:id/feature", h.AdminToggleFeatured)
	admin.GET("/stats", h.AdminStats)

	return &testEnv{db: db, engine: r, issuer: issuer}
}

// seedEnvUser inserts a user row and returns a matching bearer token.
func (e *testEnv) seedEnvUser(t *testing.T, id, role, status string) string {
	t.Helper()
	u := &domain.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       status,
	}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	token, err := e.issuer.IssueAccess(id, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// seedEnvItem inserts an item row with a generated UUID and returns its id.
func (e *testEnv) seedEnvItem(t *testing.T, owner, status string) string {
	t.Helper()
	it := &domain.Item{
		ID:          uuid.NewString(),
		Title:       "Denim jacket",
		Description: "blue, lightly worn",
		Category:    "jackets",
		Size:        "M",
		Condition:   "good",
		Status:      status,
		OwnerID:     owner,
	}
	if err := e.db.Create(it).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return it.ID
}

// do performs a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, target, token string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals a JSON response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(2, 20, 45)
	if p.TotalPages != 3 || !p.HasNext || p.Total != 45 {
		t.Fatalf("pagination wrong: %+v", p)
	}
	last := newPagination(3, 20, 45)
	if last.HasNext {
		t.Fatalf("last page must not report has_next: %+v", last)
	}
	empty := newPagination(1, 20, 0)
	if empty.TotalPages != 0 || empty.HasNext {
		t.Fatalf("empty pagination wrong: %+v", empty)
	}
}

func TestClampPagination(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x?page=-2&page_size=9999", nil)
	page, size := clampPagination(c)
	if page != 1 || size != 100 {
		t.Fatalf("clamp = (%d, %d)", page, size)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	page, size = clampPagination(c)
	if page != 1 || size != 20 {
		t.Fatalf("defaults = (%d, %d)", page, size)
	}
}
