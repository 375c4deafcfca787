package api

import (
	"net/http"
	"streamflix-api/internal/response"
	"streamflix-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SubscribeRequest represents a subscribe request
type SubscribeRequest struct {
	Quality       string  `json:"quality" binding:"required"`
	PaymentMethod *string `json:"paymentMethod"`
}

// Subscribe starts or changes the subscription of the caller
// POST /api/subscriptions/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quality, err := services.ParseQuality(req.Quality)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Subscriptions.Subscribe(c.Request.Context(), accountID, quality, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, result.Message, result)
}

// GetMySubscription returns the caller's current subscription
// GET /api/subscriptions/me
func (h *Handler) GetMySubscription(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	overview, err := h.Subscriptions.MySubscription(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, overview)
}

// ListPlans lists the subscription tiers
// GET /api/subscriptions/plans
func (h *Handler) ListPlans(c *gin.Context) {
	response.SuccessJSON(c, services.Plans())
}
