// Gacha history HTTP handlers.
//
// This file exposes REST endpoints for an account's gacha history:
//   - POST   /accounts/{id}/gacha/import  (upload a gacha-log file)
//   - GET    /accounts/{id}/gacha         (list, paginated, ETag support)
//   - DELETE /accounts/{id}/gacha         (wipe)
//   - GET    /accounts/{id}/gacha/export  (UIGF v4 download)
//
// Imports support idempotency: if the client supplies an Idempotency-Key
// header and a previous successful import with the same key exists, the
// endpoint replays the stored outcome and sets `Idempotency-Replayed: true`
// instead of re-running the pipeline.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seriaati/hoyo-gacha-backend/internal/catalog"
	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/parse"
	"github.com/seriaati/hoyo-gacha-backend/internal/repo"
	"github.com/seriaati/hoyo-gacha-backend/internal/services"
	"github.com/seriaati/hoyo-gacha-backend/internal/utils"
)

//
// DTOs
//

// ListGachaResponse wraps a page of gacha records and pagination information.
type ListGachaResponse struct {
	Records    []domain.GachaRecord `json:"records"`
	Pagination Pagination           `json:"pagination"`
}

// WipeGachaResponse reports how many records a wipe removed.
type WipeGachaResponse struct {
	Deleted int64 `json:"deleted"`
}

//
// Handlers
//

// ImportGacha godoc
// @ID          importGacha
// @Summary     Import a gacha-log file
// @Description Parses an uploaded gacha-log file from the declared source and appends
// @Description its records to the account's history. Duplicates are skipped and the
// @Description derived pull counters are recomputed.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Gacha
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       X-User-ID        header    string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header    string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path      string  true  "Account ID (UUID)"      format(uuid)
// @Param       source           query     string  true  "Import source"          Enums(uigf, srgf, star_rail_station, stardb, zzz_rng_moe, starward)
// @Param       file             formData  file    true  "Gacha-log file"
//
// @Success     200  {object}  services.ImportResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / unparseable file"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /accounts/{id}/gacha/import [post]
func (h *Handlers) ImportGacha(c *gin.Context) {
	ctx := c.Request.Context()

	account, okAcc := h.accountFromPath(c)
	if !okAcc {
		return
	}

	source := parse.Source(strings.ToLower(strings.TrimSpace(c.Query("source"))))
	if !source.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown or missing source")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read file")
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middlewareGetIdempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.importSvc.(*services.ImportService); okSvc && svc.DB != nil {
			if rec, err := repo.GetImportReceipt(ctx, svc.DB, currentUser, account.ID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				total, _ := repo.CountRecords(ctx, svc.DB, account.ID)
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, services.ImportResult{
					Total:      total,
					NewRecords: int64(rec.NewRecords),
					Source:     parse.Source(rec.Source),
				})
				return
			}
		}
	}

	result, err := h.importSvc.Import(ctx, account, source, header.Filename, data)
	if err != nil {
		status, code, msg := importErrorResponse(err)
		fail(c, status, code, msg)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.importSvc.(*services.ImportService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateImportReceipt(ctx, svc.DB, currentUser, account.ID, idemKey,
				string(source), int(result.NewRecords), http.StatusOK, ttl)
		}
	}

	ok(c, http.StatusOK, result)
}

// importErrorResponse maps an import pipeline error to an HTTP response.
// Client-file problems are 400s with a descriptive message; catalog and
// storage failures surface as 500s.
func importErrorResponse(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, parse.ErrInvalidFileExtension):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	case errors.Is(err, parse.ErrAccountGameMismatch):
		return http.StatusBadRequest, ErrCodeBadRequest, "file does not belong to this account's game"
	case errors.Is(err, parse.ErrUIDMismatch):
		return http.StatusBadRequest, ErrCodeBadRequest, "file belongs to a different uid"
	case errors.Is(err, parse.ErrNoGachaLogFound):
		return http.StatusBadRequest, ErrCodeBadRequest, "no gacha log found in file"
	case errors.Is(err, parse.ErrUnrecognizedSchemaVersion):
		return http.StatusBadRequest, ErrCodeBadRequest, "unrecognized file schema version"
	case errors.Is(err, parse.ErrUnresolvableItemName):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	case errors.Is(err, parse.ErrMalformedFile):
		return http.StatusBadRequest, ErrCodeBadRequest, "malformed file"
	case errors.Is(err, services.ErrUnknownSource):
		return http.StatusBadRequest, ErrCodeBadRequest, "unknown or missing source"
	case errors.Is(err, services.ErrItemNotInCatalog):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, catalog.ErrUnsupportedGame):
		return http.StatusInternalServerError, ErrCodeImportFailed, "reference catalog unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeImportFailed, err.Error()
	}
}

// ListGacha godoc
// @ID          listGacha
// @Summary     List gacha records
// @Description Returns a paginated page of the account's pulls, most recent first.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Gacha
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       id             path    string  true  "Account ID (UUID)"           format(uuid)
// @Param       banner_type    query   int     false "Restrict to one banner type (0 = all)"
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListGachaResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Account not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /accounts/{id}/gacha [get]
func (h *Handlers) ListGacha(c *gin.Context) {
	ctx := c.Request.Context()

	account, okAcc := h.accountFromPath(c)
	if !okAcc {
		return
	}

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.historySvc.(*services.HistoryService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.RecordsStats(ctx, db, account.ID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"gacha:%s:%d:%d"`, account.ID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	bannerType := utils.AtoiDefault(c.Query("banner_type"), 0)
	page, pageSize := clampPagination(c)

	items, total, err := h.historySvc.ListPage(ctx, account.ID, bannerType, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListGachaResponse{
		Records: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// WipeGacha godoc
// @ID          wipeGacha
// @Summary     Delete an account's gacha history
// @Description Removes every stored pull for the account and reports the count.
// @Tags        Gacha
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Account ID (UUID)"      format(uuid)
//
// @Success     200  {object} handlers.WipeGachaResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Account not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /accounts/{id}/gacha [delete]
func (h *Handlers) WipeGacha(c *gin.Context) {
	account, okAcc := h.accountFromPath(c)
	if !okAcc {
		return
	}

	deleted, err := h.historySvc.Wipe(c.Request.Context(), account.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, WipeGachaResponse{Deleted: deleted})
}

// ExportGacha godoc
// @ID          exportGacha
// @Summary     Export gacha history as UIGF v4
// @Description Serializes the account's full history as a UIGF v4.0 JSON document
// @Description and returns it as a file download.
// @Tags        Gacha
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Account ID (UUID)"      format(uuid)
//
// @Success     200  {string} string "UIGF v4 document"
// @Failure     400  {object} handlers.ErrorResponse "Bad request / game not exportable"
// @Failure     404  {object} handlers.ErrorResponse "Account not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /accounts/{id}/gacha/export [get]
func (h *Handlers) ExportGacha(c *gin.Context) {
	account, okAcc := h.accountFromPath(c)
	if !okAcc {
		return
	}

	data, err := h.exportSvc.ExportUIGF(c.Request.Context(), account)
	if err != nil {
		if errors.Is(err, services.ErrInvalidGame) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "game has no UIGF interchange form")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	filename := fmt.Sprintf("uigf_%s_%s.json", account.Game, account.UID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// middlewareGetIdempotencyKey extracts an idempotency key if an upstream
// middleware has already validated/stashed it. The fallback behavior reads
// the "Idempotency-Key" header directly when no dedicated middleware exists.
func middlewareGetIdempotencyKey(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}
