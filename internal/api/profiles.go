package api

import (
	"net/http"
	"streamflix-api/internal/response"
	"streamflix-api/internal/services"

	"github.com/gin-gonic/gin"
)

// AddToWatchlistRequest represents a watchlist addition
type AddToWatchlistRequest struct {
	MovieID uint `json:"movieId" binding:"required"`
}

// ListProfiles lists the caller's profiles
// GET /api/profiles
func (h *Handler) ListProfiles(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	profiles, err := h.Profiles.List(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, profiles)
}

// CreateProfile adds a profile
// POST /api/profiles
func (h *Handler) CreateProfile(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	var req services.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.Profiles.Create(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusCreated, "Profile created successfully", profile)
}

// UpdateProfile changes a profile
// PUT /api/profiles/:id
func (h *Handler) UpdateProfile(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req services.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.Profiles.Update(c.Request.Context(), accountID, profileID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "Profile updated successfully", profile)
}

// DeleteProfile removes a profile
// DELETE /api/profiles/:id
func (h *Handler) DeleteProfile(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.Profiles.Delete(c.Request.Context(), accountID, profileID); err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "Profile deleted successfully", nil)
}

// ListWatchlist lists a profile's watchlist
// GET /api/profiles/:id/watchlist
func (h *Handler) ListWatchlist(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	items, err := h.Watchlist.List(c.Request.Context(), accountID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, items)
}

// AddToWatchlist saves a movie on a profile's watchlist
// POST /api/profiles/:id/watchlist
func (h *Handler) AddToWatchlist(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req AddToWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.Watchlist.Add(c.Request.Context(), accountID, profileID, req.MovieID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusCreated, "Added to watchlist", item)
}

// RemoveFromWatchlist removes an item from a profile's watchlist
// DELETE /api/profiles/:id/watchlist/:itemId
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	profileID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.Watchlist.Remove(c.Request.Context(), accountID, profileID, itemID); err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "Removed from watchlist", nil)
}
