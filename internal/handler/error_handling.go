package handler

import (
	"errors"
	"net/http"

	"blog-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps service errors to HTTP responses. Everything
// unrecognized is an infrastructure failure and becomes a 500.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "The user or password is incorrect"
	case errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusUnprocessableEntity
		message = "Email is already registered"
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, models.ErrVerificationPending):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrPendingNotFound):
		statusCode = http.StatusNotFound
		message = "Registration request not found or expired"
	case errors.Is(err, models.ErrRefreshMismatch):
		statusCode = http.StatusUnauthorized
		message = "Refresh token not valid"
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, models.ErrSignatureInvalid):
		statusCode = http.StatusForbidden
		message = "Token signature verification failed"
	case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		message = "Token is invalid or malformed"
	case errors.Is(err, models.ErrTopicNotFound):
		statusCode = http.StatusNotFound
		message = "Topic not found"
	case errors.Is(err, models.ErrTopicAlreadyExists):
		statusCode = http.StatusUnprocessableEntity
		message = "Topic with this title already exists"
	case errors.Is(err, models.ErrPostNotFound):
		statusCode = http.StatusNotFound
		message = "Post not found"
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.NewErrorResponse(statusCode, message))
}
