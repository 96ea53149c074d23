package handler

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID          string `json:"id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

type tokenInfoResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"type"`
	ExpiresAt int64  `json:"expires_at"`
}

type createTopicRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=250"`
}

type updateTopicRequest struct {
	ID          string `json:"id" binding:"required,uuid"`
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=250"`
}

type createPostRequest struct {
	TopicID string `json:"topic_id" binding:"required,uuid"`
	Title   string `json:"title" binding:"required,max=100"`
	Content string `json:"content" binding:"required"`
}

type updatePostRequest struct {
	ID      string `json:"id" binding:"required,uuid"`
	Title   string `json:"title" binding:"required,max=100"`
	Content string `json:"content" binding:"required"`
}
