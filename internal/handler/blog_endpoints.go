package handler

import (
	"net/http"

	"blog-server/internal/auth"
	"blog-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid id, expected a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) createTopic(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	topic := &models.Topic{Title: req.Title, Description: req.Description}
	if err := h.blogRepo.CreateTopic(c.Request.Context(), topic); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *Handler) updateTopic(c *gin.Context) {
	var req updateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	topic := &models.Topic{
		ID:          uuid.MustParse(req.ID),
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.blogRepo.UpdateTopic(c.Request.Context(), topic); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *Handler) getTopic(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	topic, err := h.blogRepo.GetTopic(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *Handler) listTopics(c *gin.Context) {
	topics, err := h.blogRepo.ListTopics(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (h *Handler) deleteTopic(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.blogRepo.DeleteTopic(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *Handler) createPost(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		zap.L().Error("Principal missing in context during post creation")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	post := &models.Post{
		TopicID: uuid.MustParse(req.TopicID),
		UserID:  claims.UserID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := h.blogRepo.CreatePost(c.Request.Context(), post); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) updatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	post := &models.Post{
		ID:      uuid.MustParse(req.ID),
		Title:   req.Title,
		Content: req.Content,
	}
	if err := h.blogRepo.UpdatePost(c.Request.Context(), post); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	post, err := h.blogRepo.GetPost(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) listPosts(c *gin.Context) {
	var topicID *uuid.UUID
	if raw := c.Query("topic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid topic_id, expected a UUID"))
			return
		}
		topicID = &id
	}

	posts, err := h.blogRepo.ListPosts(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.blogRepo.DeletePost(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
