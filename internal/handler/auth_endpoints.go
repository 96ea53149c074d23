package handler

import (
	"net/http"

	"blog-server/internal/auth"
	"blog-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// createUser starts a registration, the account becomes real only after
// the verification letter is confirmed.
func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	if err := h.authService.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification letter sent"})
}

// registrationUser completes a registration. The middleware only lets
// verification tokens through to this route.
func (h *Handler) registrationUser(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		zap.L().Error("Principal missing in context during registration completion")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
		return
	}

	user, pair, err := h.authService.CompleteRegistration(c.Request.Context(), claims)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusCreated, userResponse{
		ID:          user.ID.String(),
		UserName:    user.Name,
		Email:       user.Email,
		AccessToken: pair.AccessToken,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	loginsTotal.Inc()
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, userResponse{
		ID:          user.ID.String(),
		UserName:    user.Name,
		Email:       user.Email,
		AccessToken: pair.AccessToken,
	})
}

func (h *Handler) logout(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	rawToken, okRaw := auth.RawTokenFromContext(c)
	if !ok || !okRaw {
		zap.L().Error("Principal missing in context during logout")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims, rawToken); err != nil {
		handleServiceError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// refresh rotates the token pair using the refresh cookie. The route is
// public, the cookie is the credential.
func (h *Handler) refresh(c *gin.Context) {
	rawRefresh, err := c.Cookie(refreshCookieName)
	if err != nil || rawRefresh == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Refresh token cookie missing"))
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), rawRefresh)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	refreshesTotal.Inc()
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken})
}

// tokenInfo introspects the request principal.
func (h *Handler) tokenInfo(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		zap.L().Error("Principal missing in context during token introspection")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
		return
	}

	resp := tokenInfoResponse{
		UserID:    claims.UserID.String(),
		Email:     claims.Email,
		TokenType: claims.TokenType,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) resetPassword(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Query parameter 'email' is required"))
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), email); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset letter sent"})
}

// updatePassword serves both a logged-in password change (access token)
// and a reset completion (reset token).
func (h *Handler) updatePassword(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		zap.L().Error("Principal missing in context during password update")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	if err := h.authService.UpdatePassword(c.Request.Context(), claims.UserID, req.Password); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
