package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a single article inside a blog
type Post struct {
	ID               uuid.UUID    `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BlogID           uuid.UUID    `json:"blogId" db:"blog_id" gorm:"type:uuid;not null;index:idx_posts_blog_id"`
	AuthorID         uuid.UUID    `json:"authorId" db:"author_id" gorm:"type:uuid;not null"`
	Title            string       `json:"title" db:"title" gorm:"type:varchar(75);not null"`
	Abstract         string       `json:"abstract" db:"abstract" gorm:"type:varchar(200);not null"`
	Content          string       `json:"content" db:"content" gorm:"type:text;not null"`
	Slug             string       `json:"slug" db:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_posts_slug"`
	Location         PostLocation `json:"location" db:"location" gorm:"type:varchar(20);not null;default:Normal;index:idx_posts_location"`
	PageViews        int64        `json:"pageViews" db:"page_views" gorm:"not null;default:0"`
	CreatedAt        time.Time    `json:"createdAt" db:"created_at" gorm:"not null;index:idx_posts_created_at"`
	UpdatedAt        *time.Time   `json:"updatedAt,omitempty" db:"updated_at" gorm:"autoUpdateTime:false"`
	ImageData        []byte       `json:"-" db:"image_data"`
	ImageContentType string       `json:"imageContentType,omitempty" db:"image_content_type" gorm:"type:varchar(100)"`
	Version          int          `json:"version" db:"version" gorm:"not null;default:1"`

	Tags     []Tag     `json:"tags,omitempty" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Location == "" {
		p.Location = LocationNormal
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

// TagTexts returns the tag texts in stored order.
func (p Post) TagTexts() []string {
	texts := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		texts = append(texts, t.Text)
	}
	return texts
}
