package content

import (
	"github.com/google/uuid"

	"github.com/rpupo63/personal-blog-backend/models"
)

// BlogInput creates a blog.
type BlogInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"required,min=2,max=500"`
	Image       []byte `json:"image,omitempty"`
}

// BlogEdit changes name and description only. Nil fields are left alone.
type BlogEdit struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,min=2,max=500"`
	Image       []byte  `json:"image,omitempty"`
	// Version is the version the caller read; zero skips the stale check against a caller copy.
	Version int `json:"version"`
}

// PostInput creates a post. Tags are stored as given, duplicates included.
type PostInput struct {
	BlogID   uuid.UUID           `json:"blogId" validate:"required"`
	Title    string              `json:"title" validate:"required,min=2,max=75"`
	Abstract string              `json:"abstract" validate:"required,min=2,max=200"`
	Content  string              `json:"content" validate:"required"`
	Location models.PostLocation `json:"location" validate:"omitempty,post_location"`
	Tags     []string            `json:"tags" validate:"dive,required,min=2,max=25"`
	Image    []byte              `json:"image,omitempty"`
}

// PostEdit updates a post. Tags always replace the whole tag set.
type PostEdit struct {
	Title    *string              `json:"title" validate:"omitempty,min=2,max=75"`
	Abstract *string              `json:"abstract" validate:"omitempty,min=2,max=200"`
	Content  *string              `json:"content" validate:"omitempty,min=1"`
	Location *models.PostLocation `json:"location" validate:"omitempty,post_location"`
	Tags     []string             `json:"tags" validate:"dive,required,min=2,max=25"`
	Image    []byte               `json:"image,omitempty"`
	Version  int                  `json:"version"`
}

// CommentInput is a new comment or an author's edit.
type CommentInput struct {
	Body    string `json:"body" validate:"required,min=2,max=500"`
	Version int    `json:"version"`
}

// ModerationInput replaces a comment's visible body.
type ModerationInput struct {
	ModeratedBody string                  `json:"moderatedBody" validate:"required,min=2,max=500"`
	Reason        models.ModerationReason `json:"moderationReason" validate:"required,moderation_reason"`
	Version       int                     `json:"version"`
}

// ContactInput is a message from the contact form.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=80"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=2,max=50"`
	Message string `json:"message" validate:"required,min=2,max=1000"`
}

// Validate reports field errors as ValidationFailed.
func (c ContactInput) Validate() error {
	return validateInput(c)
}
