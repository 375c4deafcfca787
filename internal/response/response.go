package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success returns a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Message: "success",
		Data:    data,
	}
}

// Error returns an error response
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// JSON sends a JSON response
func JSON(c *gin.Context, statusCode int, response Response) {
	c.JSON(statusCode, response)
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, Success(data))
}

// MessageJSON sends a success response with a custom message
func MessageJSON(c *gin.Context, statusCode int, message string, data interface{}) {
	JSON(c, statusCode, Response{Success: true, Message: message, Data: data})
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, message string) {
	JSON(c, statusCode, Error(message))
}

// AbortWithError sends an error JSON response and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Error(message))
}
