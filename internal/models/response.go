package models

import (
	"fmt"
	"net/http"
)

// ErrorResponse is the error body returned by every endpoint and middleware.
// Detail holds the HTTP status category ("401 Unauthorized"), Message the
// human-readable reason.
type ErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// NewErrorResponse builds an ErrorResponse for the given status code.
func NewErrorResponse(statusCode int, message string) ErrorResponse {
	return ErrorResponse{
		Detail:  fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Message: message,
	}
}

// TokenPair is the result of issuing access and refresh tokens together.
type TokenPair struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	AccessExpires  int64  `json:"access_expires"`
	RefreshExpires int64  `json:"refresh_expires"`
}
