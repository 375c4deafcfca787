package api

import (
	"net/http"
	"strconv"
	"streamflix-api/internal/middleware"
	"streamflix-api/internal/response"

	"github.com/gin-gonic/gin"
)

// ListMovies lists the catalog
// GET /api/movies?genre=xxx&profile_id=yyy
func (h *Handler) ListMovies(c *gin.Context) {
	var profileID *uint
	if raw := c.Query("profile_id"); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || value == 0 {
			response.ErrorJSON(c, http.StatusBadRequest, "Invalid profile_id")
			return
		}
		id := uint(value)
		profileID = &id
	}

	accountID, authenticated := middleware.AccountID(c)
	if profileID != nil && !authenticated {
		response.ErrorJSON(c, http.StatusUnauthorized, "Authentication required to filter by profile")
		return
	}

	movies, err := h.Catalog.ListMovies(c.Request.Context(), accountID, c.Query("genre"), profileID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, movies)
}

// GetMovie returns one movie
// GET /api/movies/:id
func (h *Handler) GetMovie(c *gin.Context) {
	movieID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	movie, err := h.Catalog.GetMovie(c.Request.Context(), movieID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, movie)
}
