package api

import (
	"net/http"
	"streamflix-api/internal/response"

	"github.com/gin-gonic/gin"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email          string `json:"email" binding:"required"`
	Password       string `json:"password" binding:"required"`
	InvitationCode string `json:"invitationCode"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest represents a password reset confirmation
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Register creates a new account
// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, req.InvitationCode)
	if err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusCreated, "Registration successful. Check your email to activate your account.", account)
}

// Activate activates an account and redirects to the login page
// GET /api/auth/activate?token=xxx
func (h *Handler) Activate(c *gin.Context) {
	if err := h.Auth.Activate(c.Request.Context(), c.Query("token")); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.FrontendURL+"/login?activated=1")
}

// Login issues an access token
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, result)
}

// ForgotPassword mails a password reset token
// POST /api/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	// Same answer whether or not the email is known
	response.MessageJSON(c, http.StatusOK, "If the email is registered, a reset token has been sent.", nil)
}

// ResetPassword sets a new password using a reset token
// POST /api/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	response.MessageJSON(c, http.StatusOK, "Password has been reset.", nil)
}

// GetMyAccount returns the authenticated account
// GET /api/accounts/me
func (h *Handler) GetMyAccount(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	account, err := h.Auth.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessJSON(c, account)
}
