package api

import (
	"errors"
	"net/http"
	"strconv"
	"streamflix-api/internal/middleware"
	"streamflix-api/internal/response"
	"streamflix-api/internal/services"
	"streamflix-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a service error. Unexpected errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		response.ErrorJSON(c, status, "Internal server error")
		return
	}
	response.ErrorJSON(c, status, err.Error())
}

func badRequest(c *gin.Context, err error) {
	response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
}

// currentAccount returns the authenticated account id set by the auth middleware
func currentAccount(c *gin.Context) (uint, bool) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.ErrorJSON(c, http.StatusUnauthorized, "Authentication required")
	}
	return accountID, ok
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(value), true
}
