package models

import (
	"time"

	"github.com/google/uuid"
)

// Topic groups blog posts under a unique title.
type Topic struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// Post is a single blog entry inside a topic.
type Post struct {
	ID       uuid.UUID `json:"id"`
	TopicID  uuid.UUID `json:"topic_id"`
	UserID   uuid.UUID `json:"user_id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}
