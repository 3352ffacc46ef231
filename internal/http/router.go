// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, authentication, idempotency, and rate
// limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-swap-backend/internal/auth"
	"github.com/tbourn/go-swap-backend/internal/config"
	"github.com/tbourn/go-swap-backend/internal/domain"
	"github.com/tbourn/go-swap-backend/internal/http/handlers"
	"github.com/tbourn/go-swap-backend/internal/http/middleware"
	"github.com/tbourn/go-swap-backend/internal/repo"
	"github.com/tbourn/go-swap-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression for JSON payloads
//  7. Metrics
//  8. CORS and Security headers
//
// Authentication, idempotency validation, and rate limiting are group-scoped:
// the idempotency lookup and the per-user limiter key both need the identity
// set by RequireAuth, so they run inside the protected groups rather than
// globally (public routes are still limited, keyed by client IP).
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderIdempotencyKey, // keys may embed client-side identifiers
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress JSON responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in; serves the UI when generated docs are linked in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db, token issuer ← config
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	userSvc := services.NewUserService(db)
	itemSvc := services.NewItemService(db)
	swapSvc := services.NewSwapService(db)
	h := handlers.New(userSvc, itemSvc, swapSvc, issuer, cfg.IdempotencyTTL)

	// Shared token-bucket limiter: public traffic keys by IP, authenticated
	// traffic by user ID (KeyByUserOrIP picks whichever is available).
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	// Idempotency lookup for POST /swaps replays, keyed by (user, key).
	idemLookup := func(ctx context.Context, uid, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, uid, key, now)
		if err != nil || rec == nil {
			return false, nil
		}
		return true, nil
	}

	apiBase := cfg.APIBasePath // e.g. "/api/v1"

	// Public API: no auth, limited by client IP.
	pub := groupWithPrefix(r, apiBase)
	pub.Use(rl.Handler())
	{
		// Sessions
		pub.POST("/auth/register", h.Register)
		pub.POST("/auth/login", h.Login)
		pub.POST("/auth/refresh", h.Refresh)

		// Catalog (read-only)
		pub.GET("/items", h.BrowseItems)
		pub.GET("/items/featured", h.FeaturedItems)
		pub.GET("/items/categories", h.ListCategories)
		pub.GET("/items/:id", h.GetItem)
		pub.GET("/items/:id/similar", h.SimilarItems)
	}

	// Authenticated API: auth → idempotency (sets replay/bypass) → rate limit.
	authed := groupWithPrefix(r, apiBase)
	authed.Use(
		middleware.RequireAuth(issuer),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idemLookup),
		rl.Handler(),
	)
	{
		// Profile
		authed.GET("/me", h.GetProfile)
		authed.PUT("/me", h.UpdateProfile)
		authed.GET("/me/items", h.MyItems)

		// Listings
		authed.POST("/items", h.CreateItem)

		// Swap negotiation
		authed.POST("/swaps", h.ProposeSwap)
		authed.GET("/swaps", h.ListSwaps)
		authed.GET("/swaps/:id", h.GetSwap)
		authed.POST("/swaps/:id/respond", h.RespondSwap)
	}

	// Admin API: role claim gate at the edge; services re-check against the DB.
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/status", h.AdminSetUserStatus)
		admin.GET("/items", h.AdminListItems)
		admin.PUT("/items/:id/status", h.AdminSetItemStatus)
		admin.POST("/items/:id/feature", h.AdminToggleFeatured)
		admin.GET("/stats", h.AdminStats)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
