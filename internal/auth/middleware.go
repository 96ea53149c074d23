package auth

import (
	"errors"
	"net/http"
	"strings"

	"blog-server/internal/models"
	"blog-server/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Paths whose access is granted by a dedicated token type instead of a
// general access token.
const (
	registrationCompletionPath = "auth/registration_user"
	passwordUpdatePath         = "auth/update_password"
)

// Middleware is the authorization decision procedure applied to every
// request:
//  1. unknown routes fall through to the router's 404 without any token
//     inspection,
//  2. public paths pass anonymously, a bad token cannot block them,
//  3. everything else needs a verified token whose type is allowed for
//     the requested path; the principal lands in the request context.
func Middleware(verifier *Verifier, matcher *Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		routePath := c.FullPath()
		if routePath == "" {
			c.Next()
			return
		}
		path := strings.Trim(routePath, "/")

		if matcher.IsPublic(path, c.Request.Method) {
			publicRequestsTotal.Inc()
			c.Next()
			return
		}

		claims, raw, err := verifier.VerifyHeader(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			tokenVerificationsTotal.WithLabelValues("unknown", "failure").Inc()
			abortWithAuthError(c, err)
			return
		}

		if !typeAllowsPath(claims.TokenType, path) {
			zap.L().Warn("Token type not allowed for path",
				zap.String("tokenType", claims.TokenType),
				zap.String("path", path),
				zap.String("userID", claims.UserID.String()),
			)
			tokenVerificationsTotal.WithLabelValues(claims.TokenType, "failure").Inc()
			abortWithAuthError(c, models.ErrCapabilityMismatch)
			return
		}

		tokenVerificationsTotal.WithLabelValues(claims.TokenType, "success").Inc()
		c.Set(models.ContextClaimsKey, claims)
		c.Set(models.ContextRawTokenKey, raw)
		zap.L().Debug("Request authorized",
			zap.String("userID", claims.UserID.String()),
			zap.String("tokenType", claims.TokenType),
			zap.String("path", path),
		)
		c.Next()
	}
}

// typeAllowsPath implements the capability policy. Verification tokens
// only complete a registration, reset tokens only complete a password
// reset, access tokens open everything else (including a logged-in
// password change). Refresh tokens never authorize a request directly.
func typeAllowsPath(tokenType, path string) bool {
	switch path {
	case registrationCompletionPath:
		return tokenType == token.TypeVerification
	case passwordUpdatePath:
		return tokenType == token.TypeAccess || tokenType == token.TypeReset
	default:
		return tokenType == token.TypeAccess
	}
}

// abortWithAuthError maps an authorization failure to its HTTP response.
// Unrecognized errors are infrastructure failures and map to 500, the
// pipeline never fails open.
func abortWithAuthError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrAuthHeaderMalformed):
		statusCode = http.StatusBadRequest
		message = "Invalid authorization header format"
	case errors.Is(err, models.ErrAuthHeaderMissing):
		statusCode = http.StatusUnauthorized
		message = "Authorization header is missing"
	case errors.Is(err, models.ErrTokenRevoked):
		statusCode = http.StatusUnauthorized
		message = "Access token is invalid"
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, models.ErrSignatureInvalid):
		statusCode = http.StatusForbidden
		message = "Token signature verification failed"
	case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		message = "Token is invalid or malformed"
	case errors.Is(err, models.ErrCapabilityMismatch):
		statusCode = http.StatusForbidden
		message = "Access denied"
	default:
		zap.L().Error("Authorization failed with infrastructure error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.AbortWithStatusJSON(statusCode, models.NewErrorResponse(statusCode, message))
}

// ClaimsFromContext returns the principal stored by the middleware.
func ClaimsFromContext(c *gin.Context) (*token.Claims, bool) {
	value, exists := c.Get(models.ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}

// RawTokenFromContext returns the raw token stored by the middleware.
func RawTokenFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(models.ContextRawTokenKey)
	if !exists {
		return "", false
	}
	raw, ok := value.(string)
	return raw, ok
}
