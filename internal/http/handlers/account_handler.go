// Account HTTP handlers.
//
// This file exposes REST endpoints for linked game accounts:
//   - POST   /accounts        (link)
//   - GET    /accounts        (list)
//   - GET    /accounts/{id}   (fetch)
//   - DELETE /accounts/{id}   (unlink, history cascades)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/parse"
	"github.com/seriaati/hoyo-gacha-backend/internal/services"
	"github.com/seriaati/hoyo-gacha-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AccountService defines linked-account lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	// Link creates a linked account for userID.
	Link(ctx context.Context, userID, uid string, game domain.Game) (*domain.GameAccount, error)
	// List returns all linked accounts for a user.
	List(ctx context.Context, userID string) ([]domain.GameAccount, error)
	// Get fetches an account that belongs to userID.
	Get(ctx context.Context, userID, accountID string) (*domain.GameAccount, error)
	// Unlink removes an account owned by userID.
	Unlink(ctx context.Context, userID, accountID string) error
}

// ImportService defines the gacha-log upload pipeline.
type ImportService interface {
	// Import parses an uploaded gacha-log file and appends its records.
	Import(ctx context.Context, account *domain.GameAccount, source parse.Source, filename string, data []byte) (*services.ImportResult, error)
}

// HistoryService defines read and manage operations over stored pulls.
type HistoryService interface {
	// ListPage returns a page of an account's pulls and the total count.
	ListPage(ctx context.Context, accountID string, bannerType, page, pageSize int) ([]domain.GachaRecord, int64, error)
	// Wipe deletes an account's entire history.
	Wipe(ctx context.Context, accountID string) (int64, error)
}

// ExportService defines interchange-format export of stored history.
type ExportService interface {
	// ExportUIGF serializes an account's history as a UIGF v4 document.
	ExportUIGF(ctx context.Context, account *domain.GameAccount) ([]byte, error)
}

// LeaderboardService defines score submission and ranked listing.
type LeaderboardService interface {
	// Submit records a score and reranks the affected partition.
	Submit(ctx context.Context, lbType string, game domain.Game, uid string, value float64) error
	// TopPage returns one page of a leaderboard ordered by rank.
	TopPage(ctx context.Context, lbType string, game domain.Game, page, pageSize int) ([]domain.Leaderboard, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for accounts, gacha history, and
// leaderboards. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	accountSvc AccountService
	importSvc  ImportService
	historySvc HistoryService
	exportSvc  ExportService
	lbSvc      LeaderboardService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(accountSvc AccountService, importSvc ImportService, historySvc HistoryService, exportSvc ExportService, lbSvc LeaderboardService) *Handlers {
	return &Handlers{
		accountSvc: accountSvc,
		importSvc:  importSvc,
		historySvc: historySvc,
		exportSvc:  exportSvc,
		lbSvc:      lbSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// LinkAccountRequest is the JSON payload for linking a game account.
type LinkAccountRequest struct {
	// UID is the in-game account identifier (digits only).
	UID string `json:"uid" binding:"required" example:"901211014"`
	// Game is one of: genshin, hsr, zzz, honkai3, tot.
	Game string `json:"game" binding:"required" example:"genshin"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListAccountsResponse wraps the user's linked accounts.
type ListAccountsResponse struct {
	Accounts []domain.GameAccount `json:"accounts"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// accountFromPath resolves the :id path param to an account owned by the
// current user, writing the error response itself on failure.
func (h *Handlers) accountFromPath(c *gin.Context) (*domain.GameAccount, bool) {
	accountID := c.Param("id")
	if _, err := uuid.Parse(accountID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "account id must be a UUID")
		return nil, false
	}
	account, err := h.accountSvc.Get(c.Request.Context(), userID(c), accountID)
	if err != nil {
		if err == services.ErrAccountNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		} else {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return nil, false
	}
	return account, true
}

//
// Handlers
//

// LinkAccount godoc
// @ID          linkAccount
// @Summary     Link a game account
// @Description Links a game UID to the current user and returns the account resource.
// @Tags        Accounts
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.LinkAccountRequest  true  "Link account payload"
//
// @Success     201  {object}  domain.GameAccount
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Account already linked"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /accounts [post]
func (h *Handlers) LinkAccount(c *gin.Context) {
	var req LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	account, err := h.accountSvc.Link(c.Request.Context(), userID(c), strings.TrimSpace(req.UID), domain.Game(strings.ToLower(strings.TrimSpace(req.Game))))
	if err != nil {
		switch err {
		case services.ErrInvalidUID:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "uid must be digits only")
		case services.ErrInvalidGame:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown game")
		case services.ErrDuplicateAccount:
			fail(c, http.StatusConflict, ErrCodeConflict, "account already linked")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeLinkFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, account)
}

// ListAccounts godoc
// @ID          listAccounts
// @Summary     List linked accounts
// @Description Returns all game accounts linked to the current user.
// @Tags        Accounts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.ListAccountsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /accounts [get]
func (h *Handlers) ListAccounts(c *gin.Context) {
	accounts, err := h.accountSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

// GetAccount godoc
// @ID          getAccount
// @Summary     Fetch a linked account
// @Description Returns one linked account owned by the current user.
// @Tags        Accounts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Account ID (UUID)"      format(uuid)
//
// @Success     200  {object} domain.GameAccount
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *Handlers) GetAccount(c *gin.Context) {
	account, okAcc := h.accountFromPath(c)
	if !okAcc {
		return
	}
	ok(c, http.StatusOK, account)
}

// UnlinkAccount godoc
// @ID          unlinkAccount
// @Summary     Unlink an account
// @Description Removes a linked account and, via cascade, its stored history.
// @Tags        Accounts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Account ID (UUID)"      format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Account not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /accounts/{id} [delete]
func (h *Handlers) UnlinkAccount(c *gin.Context) {
	accountID := c.Param("id")
	if _, err := uuid.Parse(accountID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "account id must be a UUID")
		return
	}

	if err := h.accountSvc.Unlink(c.Request.Context(), userID(c), accountID); err != nil {
		if err == services.ErrAccountNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
		} else {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
