package repository

import (
	"context"
	"errors"
	"fmt"

	"blog-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgBlogRepository implements BlogRepository
var _ BlogRepository = (*pgBlogRepository)(nil)

type pgBlogRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgBlogRepository creates a new PostgreSQL-backed BlogRepository.
func NewPgBlogRepository(db DBTX, logger *zap.Logger) BlogRepository {
	return &pgBlogRepository{
		db:     db,
		logger: logger.Named("PgBlogRepo"),
	}
}

// CreateTopic inserts a new topic.
func (r *pgBlogRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	query := `INSERT INTO topics (title, description) VALUES ($1, $2) RETURNING id, created, modified`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("title", topic.Title))
	err := r.db.QueryRow(ctx, query, topic.Title, topic.Description).
		Scan(&topic.ID, &topic.Created, &topic.Modified)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create duplicate topic", zap.String("title", topic.Title))
			return models.ErrTopicAlreadyExists
		}
		r.logger.Error("Failed to create topic in postgres", zap.Error(err), zap.String("title", topic.Title))
		return fmt.Errorf("failed to create topic in postgres: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic by ID.
func (r *pgBlogRepository) GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	query := `SELECT id, title, description, created, modified FROM topics WHERE id = $1`
	topic := &models.Topic{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	err := r.db.QueryRow(ctx, query, id).
		Scan(&topic.ID, &topic.Title, &topic.Description, &topic.Created, &topic.Modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTopicNotFound
		}
		r.logger.Error("Failed to get topic from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get topic from postgres: %w", err)
	}
	return topic, nil
}

// ListTopics retrieves all topics.
func (r *pgBlogRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	query := `SELECT id, title, description, created, modified FROM topics ORDER BY created ASC`
	r.logger.Debug("Executing query", zap.String("query", query))
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query topics from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query topics from postgres: %w", err)
	}
	defer rows.Close()

	topics := make([]models.Topic, 0)
	for rows.Next() {
		var topic models.Topic
		if err := rows.Scan(&topic.ID, &topic.Title, &topic.Description, &topic.Created, &topic.Modified); err != nil {
			r.logger.Error("Failed to scan topic row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topic rows: %w", err)
	}
	return topics, nil
}

// UpdateTopic updates a topic's title and description.
func (r *pgBlogRepository) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	query := `UPDATE topics SET title = $2, description = $3, modified = now() WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", topic.ID.String()))
	tag, err := r.db.Exec(ctx, query, topic.ID, topic.Title, topic.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrTopicAlreadyExists
		}
		r.logger.Error("Failed to update topic in postgres", zap.Error(err), zap.String("id", topic.ID.String()))
		return fmt.Errorf("failed to update topic in postgres: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTopicNotFound
	}
	return nil
}

// DeleteTopic removes a topic.
func (r *pgBlogRepository) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM topics WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete topic from postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to delete topic from postgres: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrTopicNotFound
	}
	return nil
}

// CreatePost inserts a new post.
func (r *pgBlogRepository) CreatePost(ctx context.Context, post *models.Post) error {
	query := `INSERT INTO posts (topic_id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created, modified`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("title", post.Title))
	err := r.db.QueryRow(ctx, query, post.TopicID, post.UserID, post.Title, post.Content).
		Scan(&post.ID, &post.Created, &post.Modified)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503 is foreign_key_violation, the referenced topic is gone
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			r.logger.Warn("Attempted to create post for missing topic", zap.String("topicID", post.TopicID.String()))
			return models.ErrTopicNotFound
		}
		r.logger.Error("Failed to create post in postgres", zap.Error(err), zap.String("title", post.Title))
		return fmt.Errorf("failed to create post in postgres: %w", err)
	}
	return nil
}

// GetPost retrieves a post by ID.
func (r *pgBlogRepository) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `SELECT id, topic_id, user_id, title, content, created, modified FROM posts WHERE id = $1`
	post := &models.Post{}
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	err := r.db.QueryRow(ctx, query, id).
		Scan(&post.ID, &post.TopicID, &post.UserID, &post.Title, &post.Content, &post.Created, &post.Modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPostNotFound
		}
		r.logger.Error("Failed to get post from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get post from postgres: %w", err)
	}
	return post, nil
}

// ListPosts retrieves posts, optionally filtered by topic.
func (r *pgBlogRepository) ListPosts(ctx context.Context, topicID *uuid.UUID) ([]models.Post, error) {
	query := `SELECT id, topic_id, user_id, title, content, created, modified FROM posts`
	args := []any{}
	if topicID != nil {
		query += ` WHERE topic_id = $1`
		args = append(args, *topicID)
	}
	query += ` ORDER BY created ASC`
	r.logger.Debug("Executing query", zap.String("query", query))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query posts from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query posts from postgres: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.TopicID, &post.UserID, &post.Title, &post.Content, &post.Created, &post.Modified); err != nil {
			r.logger.Error("Failed to scan post row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

// UpdatePost updates a post's title and content.
func (r *pgBlogRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	query := `UPDATE posts SET title = $2, content = $3, modified = now() WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", post.ID.String()))
	tag, err := r.db.Exec(ctx, query, post.ID, post.Title, post.Content)
	if err != nil {
		r.logger.Error("Failed to update post in postgres", zap.Error(err), zap.String("id", post.ID.String()))
		return fmt.Errorf("failed to update post in postgres: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPostNotFound
	}
	return nil
}

// DeletePost removes a post.
func (r *pgBlogRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete post from postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to delete post from postgres: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPostNotFound
	}
	return nil
}
