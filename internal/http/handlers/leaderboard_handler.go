// Leaderboard HTTP handlers.
//
// This file exposes REST endpoints for ranked boards:
//   - POST /leaderboards/{type}  (submit a score)
//   - GET  /leaderboards/{type}  (ranked page)
//
// A submission triggers a full rerank of the affected (type, game) partition,
// so reads always observe a gap-free rank sequence.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seriaati/hoyo-gacha-backend/internal/domain"
	"github.com/seriaati/hoyo-gacha-backend/internal/services"
)

//
// DTOs
//

// SubmitScoreRequest is the JSON payload for a leaderboard submission.
type SubmitScoreRequest struct {
	// Game is one of: genshin, hsr, zzz, honkai3, tot.
	Game string `json:"game" binding:"required" example:"genshin"`
	// UID is the in-game account identifier the score belongs to.
	UID string `json:"uid" binding:"required" example:"901211014"`
	// Value is the score; order semantics depend on the leaderboard type.
	Value float64 `json:"value" example:"1543"`
}

// LeaderboardPageResponse wraps a ranked page of one leaderboard.
type LeaderboardPageResponse struct {
	Entries    []domain.Leaderboard `json:"entries"`
	Pagination Pagination           `json:"pagination"`
}

//
// Handlers
//

// SubmitScore godoc
// @ID          submitScore
// @Summary     Submit a leaderboard score
// @Description Inserts or updates a score for (type, game, uid) and reranks the board.
// @Tags        Leaderboards
// @Accept      json
// @Produce     json
//
// @Param       type  path  string  true  "Leaderboard type"  example(lifetime_pulls)
// @Param       body  body  handlers.SubmitScoreRequest  true  "Score payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown leaderboard type"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /leaderboards/{type} [post]
func (h *Handlers) SubmitScore(c *gin.Context) {
	lbType := c.Param("type")

	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "game, uid and value required")
		return
	}

	game := domain.Game(strings.ToLower(strings.TrimSpace(req.Game)))
	err := h.lbSvc.Submit(c.Request.Context(), lbType, game, strings.TrimSpace(req.UID), req.Value)
	if err != nil {
		switch err {
		case services.ErrUnknownLeaderboard:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown leaderboard type")
		case services.ErrInvalidGame:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown game")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// GetLeaderboard godoc
// @ID          getLeaderboard
// @Summary     Read a leaderboard page
// @Description Returns one page of a (type, game) leaderboard ordered by rank.
// @Tags        Leaderboards
// @Produce     json
//
// @Param       type       path   string  true  "Leaderboard type"  example(lifetime_pulls)
// @Param       game       query  string  true  "Game"              Enums(genshin, hsr, zzz, honkai3, tot)
// @Param       page       query  int     false "Page number"       minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"    minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.LeaderboardPageResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Unknown leaderboard type"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /leaderboards/{type} [get]
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	lbType := c.Param("type")

	game := domain.Game(strings.ToLower(strings.TrimSpace(c.Query("game"))))
	if !game.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown game")
		return
	}

	page, pageSize := clampPagination(c)

	entries, total, err := h.lbSvc.TopPage(c.Request.Context(), lbType, game, page, pageSize)
	if err != nil {
		if err == services.ErrUnknownLeaderboard {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown leaderboard type")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, LeaderboardPageResponse{
		Entries: entries,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
