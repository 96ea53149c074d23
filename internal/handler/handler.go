package handler

import (
	"blog-server/internal/config"
	"blog-server/internal/repository"
	"blog-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Cookie carrying the refresh token between /auth responses and
// /auth/refresh requests.
const refreshCookieName = "refresh_token_cookie"

// Handler wires the HTTP surface to the auth service and repositories.
type Handler struct {
	authService service.AuthService
	blogRepo    repository.BlogRepository
	cfg         *config.Config
}

func New(authService service.AuthService, blogRepo repository.BlogRepository, cfg *config.Config) *Handler {
	return &Handler{
		authService: authService,
		blogRepo:    blogRepo,
		cfg:         cfg,
	}
}

// RegisterRoutes attaches all endpoints. Access control lives in the
// authorization middleware installed on the engine, not here.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/create_user", h.createUser)
		authGroup.GET("/registration_user", h.registrationUser)
		authGroup.POST("/login", h.login)
		authGroup.GET("/logout", h.logout)
		authGroup.GET("/refresh", h.refresh)
		authGroup.GET("/token", h.tokenInfo)
		authGroup.GET("/reset_password", h.resetPassword)
		authGroup.POST("/update_password", h.updatePassword)
		authGroup.GET("/users", h.listUsers)
	}

	topicGroup := router.Group("/topic")
	{
		topicGroup.POST("/new_topic", h.createTopic)
		topicGroup.PUT("/update_topic", h.updateTopic)
		topicGroup.GET("/list", h.listTopics)
		topicGroup.GET("/:id", h.getTopic)
		topicGroup.DELETE("/:id", h.deleteTopic)
	}

	postGroup := router.Group("/post")
	{
		postGroup.POST("/new_post", h.createPost)
		postGroup.PUT("/update_post", h.updatePost)
		postGroup.GET("/list", h.listPosts)
		postGroup.GET("/:id", h.getPost)
		postGroup.DELETE("/:id", h.deletePost)
	}
}

// setRefreshCookie installs the httponly refresh cookie for the refresh
// token's full lifetime.
func (h *Handler) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetCookie(refreshCookieName, refreshToken, int(h.cfg.RefreshTokenTTL.Seconds()), "/", "", false, true)
}

// clearRefreshCookie drops the refresh cookie.
func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
}
