// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
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

	"github.com/seriaati/hoyo-gacha-backend/internal/catalog"
	"github.com/seriaati/hoyo-gacha-backend/internal/config"
	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/http/handlers"
	"github.com/seriaati/hoyo-gacha-backend/internal/http/middleware"
	"github.com/seriaati/hoyo-gacha-backend/internal/repo"
	"github.com/seriaati/hoyo-gacha-backend/internal/services"
)

// accountRepoShim adapts the repository free functions to the
// services.AccountRepo interface expected by the AccountService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type accountRepoShim struct{}

// CreateAccount proxies repo.CreateAccount.
func (accountRepoShim) CreateAccount(ctx context.Context, db *gorm.DB, userID, uid string, game domain.Game) (*domain.GameAccount, error) {
	return repo.CreateAccount(ctx, db, userID, uid, game)
}

// ListAccounts proxies repo.ListAccounts.
func (accountRepoShim) ListAccounts(ctx context.Context, db *gorm.DB, userID string) ([]domain.GameAccount, error) {
	return repo.ListAccounts(ctx, db, userID)
}

// GetAccount proxies repo.GetAccount.
func (accountRepoShim) GetAccount(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GameAccount, error) {
	return repo.GetAccount(ctx, db, id, userID)
}

// DeleteAccount proxies repo.DeleteAccount.
func (accountRepoShim) DeleteAccount(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteAccount(ctx, db, id, userID)
}

// gachaRepoShim adapts the repository free functions to the
// services.GachaRepo interface expected by the ImportService.
type gachaRepoShim struct{}

// BulkCreateRecords proxies repo.BulkCreateRecords.
func (gachaRepoShim) BulkCreateRecords(ctx context.Context, db *gorm.DB, records []domain.GachaRecord) error {
	return repo.BulkCreateRecords(ctx, db, records)
}

// CountRecords proxies repo.CountRecords.
func (gachaRepoShim) CountRecords(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	return repo.CountRecords(ctx, db, accountID)
}

// RenumberRecords proxies repo.RenumberRecords.
func (gachaRepoShim) RenumberRecords(ctx context.Context, db *gorm.DB, accountID string) error {
	return repo.RenumberRecords(ctx, db, accountID)
}

// historyRepoShim adapts the repository free functions to the
// services.HistoryRepo interface expected by the HistoryService.
type historyRepoShim struct{}

// CountRecordsByBanner proxies repo.CountRecordsByBanner.
func (historyRepoShim) CountRecordsByBanner(ctx context.Context, db *gorm.DB, accountID string, bannerType int) (int64, error) {
	return repo.CountRecordsByBanner(ctx, db, accountID, bannerType)
}

// ListRecordsPage proxies repo.ListRecordsPage.
func (historyRepoShim) ListRecordsPage(ctx context.Context, db *gorm.DB, accountID string, bannerType, offset, limit int) ([]domain.GachaRecord, error) {
	return repo.ListRecordsPage(ctx, db, accountID, bannerType, offset, limit)
}

// DeleteRecords proxies repo.DeleteRecords.
func (historyRepoShim) DeleteRecords(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	return repo.DeleteRecords(ctx, db, accountID)
}

// exportRepoShim adapts repo.ListRecords to the services.HistoryReader
// interface expected by the ExportService.
type exportRepoShim struct{}

// ListRecords proxies repo.ListRecords.
func (exportRepoShim) ListRecords(ctx context.Context, db *gorm.DB, accountID string) ([]domain.GachaRecord, error) {
	return repo.ListRecords(ctx, db, accountID)
}

// leaderboardRepoShim adapts the repository free functions to the
// services.LeaderboardRepo interface expected by the LeaderboardService.
type leaderboardRepoShim struct{}

// UpsertScore proxies repo.UpsertScore.
func (leaderboardRepoShim) UpsertScore(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, uid string, value float64) error {
	return repo.UpsertScore(ctx, db, lbType, game, uid, value)
}

// RerankLeaderboard proxies repo.RerankLeaderboard.
func (leaderboardRepoShim) RerankLeaderboard(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, order repo.RankOrder) error {
	return repo.RerankLeaderboard(ctx, db, lbType, game, order)
}

// CountLeaderboard proxies repo.CountLeaderboard.
func (leaderboardRepoShim) CountLeaderboard(ctx context.Context, db *gorm.DB, lbType string, game domain.Game) (int64, error) {
	return repo.CountLeaderboard(ctx, db, lbType, game)
}

// ListLeaderboardPage proxies repo.ListLeaderboardPage.
func (leaderboardRepoShim) ListLeaderboardPage(ctx context.Context, db *gorm.DB, lbType string, game domain.Game, offset, limit int) ([]domain.Leaderboard, error) {
	return repo.ListLeaderboardPage(ctx, db, lbType, game, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (uploads dominate, so the cap is configurable)
//  6. Gzip response compression
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cat catalog.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (covers gacha-log uploads)
	r.Use(limitBody(cfg.MaxUploadBytes))

	// 6) Compress JSON responses (history pages and exports shrink well)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, accountID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetImportReceipt(ctx, db, userID, accountID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
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
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
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

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/catalog
	accountSvc := services.NewAccountService(db, accountRepoShim{})
	importSvc := services.NewImportService(db, gachaRepoShim{}, cat)
	historySvc := &services.HistoryService{DB: db, Repo: historyRepoShim{}}
	exportSvc := &services.ExportService{
		DB:         db,
		Repo:       exportRepoShim{},
		App:        cfg.ExportApp,
		AppVersion: cfg.ExportVersion,
	}
	lbSvc := &services.LeaderboardService{DB: db, Repo: leaderboardRepoShim{}}

	h := handlers.New(accountSvc, importSvc, historySvc, exportSvc, lbSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts
		api.POST("/accounts", h.LinkAccount)
		api.GET("/accounts", h.ListAccounts)
		api.GET("/accounts/:id", h.GetAccount)
		api.DELETE("/accounts/:id", h.UnlinkAccount)

		// Gacha history
		api.POST("/accounts/:id/gacha/import", h.ImportGacha)
		api.GET("/accounts/:id/gacha", h.ListGacha)
		api.DELETE("/accounts/:id/gacha", h.WipeGacha)
		api.GET("/accounts/:id/gacha/export", h.ExportGacha)

		// Leaderboards
		api.POST("/leaderboards/:type", h.SubmitScore)
		api.GET("/leaderboards/:type", h.GetLeaderboard)
	}
}

// NewCatalogClient builds the production reference-catalog client from
// configuration. Callers that want a fake (tests) can pass their own
// catalog.Client to RegisterRoutes instead.
func NewCatalogClient(cfg config.Config) *catalog.HTTPClient {
	return catalog.NewHTTPClient(map[domain.Game]string{
		domain.GameGenshin:  cfg.Catalog.GenshinURL,
		domain.GameStarRail: cfg.Catalog.StarRailURL,
		domain.GameZZZ:      cfg.Catalog.ZZZURL,
	}, cfg.Catalog.Timeout, cfg.Catalog.CacheTTL)
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
