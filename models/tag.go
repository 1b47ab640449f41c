package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels a post. Tags live and die with their post's tag set.
type Tag struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID   uuid.UUID `json:"postId" db:"post_id" gorm:"type:uuid;not null;index:idx_tags_post_id"`
	AuthorID uuid.UUID `json:"authorId" db:"author_id" gorm:"type:uuid;not null"`
	Text     string    `json:"text" db:"text" gorm:"type:varchar(25);not null;index:idx_tags_text"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
