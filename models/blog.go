package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog is a named collection of posts owned by one author
type Blog struct {
	ID               uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	AuthorID         uuid.UUID  `json:"authorId" db:"author_id" gorm:"type:uuid;not null;index:idx_blogs_author_id"`
	Name             string     `json:"name" db:"name" gorm:"type:varchar(100);not null"`
	Description      string     `json:"description" db:"description" gorm:"type:varchar(500);not null"`
	Slug             string     `json:"slug" db:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_blogs_slug"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty" db:"updated_at" gorm:"autoUpdateTime:false"`
	ImageData        []byte     `json:"-" db:"image_data"`
	ImageContentType string     `json:"imageContentType,omitempty" db:"image_content_type" gorm:"type:varchar(100)"`
	Version          int        `json:"version" db:"version" gorm:"not null;default:1"`

	Posts []Post `json:"posts,omitempty" gorm:"foreignKey:BlogID;references:ID;constraint:OnDelete:CASCADE"`
}

func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	return nil
}
