package api

import (
	"net/http"
	"streamflix-api/internal/response"

	"github.com/gin-gonic/gin"
)

// CreateInvitationRequest represents an invitation request
type CreateInvitationRequest struct {
	InviteeEmail string `json:"inviteeEmail" binding:"required,email"`
}

// CreateInvitation invites a friend by email
// POST /api/invitations
func (h *Handler) CreateInvitation(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.Invitations.Create(c.Request.Context(), accountID, req.InviteeEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusCreated, "Invitation created", result)
}

// ListSentInvitations lists the caller's invitations, newest first
// GET /api/invitations/me
func (h *Handler) ListSentInvitations(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	invitations, err := h.Invitations.ListSent(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, invitations)
}
