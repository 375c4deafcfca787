package api

import (
	"net/http"
	"streamflix-api/internal/response"
	"streamflix-api/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RecordHistoryRequest reports playback progress for a movie
type RecordHistoryRequest struct {
	MovieID         uint    `json:"movieId" binding:"required"`
	DurationWatched *int    `json:"durationWatched"`
	ResumePosition  *string `json:"resumePosition"`
	Completed       *bool   `json:"completed"`
}

// UpdateHistoryRequest changes the progress of an existing history entry
type UpdateHistoryRequest struct {
	DurationWatched *int    `json:"durationWatched"`
	ResumePosition  *string `json:"resumePosition"`
	Completed       *bool   `json:"completed"`
}

// historyLimit parses the optional limit query parameter, 0 meaning unset
func historyLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid limit")
		return 0, false
	}
	return limit, true
}

// ListHistory lists a profile's watch history
// GET /api/profiles/:id/history
func (h *Handler) ListHistory(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	limit, ok := historyLimit(c)
	if !ok {
		return
	}

	entries, err := h.History.List(c.Request.Context(), accountID, profileID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, entries)
}

// ContinueWatching lists the unfinished movies of a profile
// GET /api/profiles/:id/history/continue-watching
func (h *Handler) ContinueWatching(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	limit, ok := historyLimit(c)
	if !ok {
		return
	}

	entries, err := h.History.ContinueWatching(c.Request.Context(), accountID, profileID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, entries)
}

// RecordHistory creates or updates the history entry of a movie
// POST /api/profiles/:id/history
func (h *Handler) RecordHistory(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req RecordHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.History.Record(c.Request.Context(), accountID, profileID, req.MovieID, services.HistoryInput{
		DurationWatched: req.DurationWatched,
		ResumePosition:  req.ResumePosition,
		Completed:       req.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "History recorded", entry)
}

// UpdateHistory changes a history entry
// PATCH /api/profiles/:id/history/:historyId
func (h *Handler) UpdateHistory(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	historyID, ok := uintParam(c, "historyId")
	if !ok {
		return
	}

	var req UpdateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.History.Update(c.Request.Context(), accountID, profileID, historyID, services.HistoryInput{
		DurationWatched: req.DurationWatched,
		ResumePosition:  req.ResumePosition,
		Completed:       req.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "History updated", entry)
}

// RemoveHistory deletes one history entry
// DELETE /api/profiles/:id/history/:historyId
func (h *Handler) RemoveHistory(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	historyID, ok := uintParam(c, "historyId")
	if !ok {
		return
	}

	if err := h.History.Remove(c.Request.Context(), accountID, profileID, historyID); err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "History entry deleted", nil)
}

// ClearHistory deletes the whole history of a profile
// DELETE /api/profiles/:id/history
func (h *Handler) ClearHistory(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.History.Clear(c.Request.Context(), accountID, profileID); err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "History cleared", nil)
}
