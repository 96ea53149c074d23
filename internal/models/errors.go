package models

import (
	"errors"
	"fmt"
	"time"
)

// Application-wide standard errors
var (
	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Token Errors
	ErrTokenInvalid     = errors.New("token is invalid")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrSignatureInvalid = errors.New("token signature is invalid")

	// Authorization Header Errors
	ErrAuthHeaderMissing   = errors.New("authorization header is missing")
	ErrAuthHeaderMalformed = errors.New("authorization header is malformed")

	// Capability / Refresh Errors
	ErrCapabilityMismatch = errors.New("token type is not allowed for this operation")
	ErrRefreshMismatch    = errors.New("refresh token does not match the stored one")

	// Pending Registration / Reset Errors
	ErrVerificationPending = errors.New("verification email already sent")
	ErrPendingNotFound     = errors.New("pending request not found or expired")

	// Blog Errors
	ErrTopicNotFound      = errors.New("topic not found")
	ErrTopicAlreadyExists = errors.New("topic with this title already exists")
	ErrPostNotFound       = errors.New("post not found")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)

// VerificationPendingError carries the remaining cooldown before a new
// verification or reset letter may be requested. errors.Is matches it
// against ErrVerificationPending.
type VerificationPendingError struct {
	RetryAfter time.Duration
}

func (e *VerificationPendingError) Error() string {
	return fmt.Sprintf("letter already sent, retry in %d seconds", int(e.RetryAfter.Seconds()))
}

func (e *VerificationPendingError) Unwrap() error {
	return ErrVerificationPending
}
