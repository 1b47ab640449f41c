package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reader's remark on a post. Moderation fields are only ever written together.
type Comment struct {
	ID               uuid.UUID         `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID           uuid.UUID         `json:"postId" db:"post_id" gorm:"type:uuid;not null;index:idx_comments_post_id"`
	AuthorID         uuid.UUID         `json:"authorId" db:"author_id" gorm:"type:uuid;not null"`
	ModeratorID      *uuid.UUID        `json:"moderatorId,omitempty" db:"moderator_id" gorm:"type:uuid"`
	Body             string            `json:"body" db:"body" gorm:"type:varchar(500);not null"`
	ModeratedBody    *string           `json:"moderatedBody,omitempty" db:"moderated_body" gorm:"type:varchar(500)"`
	ModerationReason *ModerationReason `json:"moderationReason,omitempty" db:"moderation_reason" gorm:"type:varchar(20)"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at" gorm:"not null"`
	EditedAt         *time.Time        `json:"editedAt,omitempty" db:"edited_at"`
	ModeratedAt      *time.Time        `json:"moderatedAt,omitempty" db:"moderated_at" gorm:"index:idx_comments_moderated_at"`
	DeletedAt        *time.Time        `json:"deletedAt,omitempty" db:"deleted_at"`
	Version          int               `json:"version" db:"version" gorm:"not null;default:1"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

func (c Comment) IsModerated() bool {
	return c.ModeratedAt != nil
}

// DisplayBody is what readers see: the moderator's replacement once moderated.
func (c Comment) DisplayBody() string {
	if c.ModeratedAt != nil && c.ModeratedBody != nil {
		return *c.ModeratedBody
	}
	return c.Body
}
