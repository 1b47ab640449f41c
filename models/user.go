package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User holds the display profile of an author or moderator. Credentials live with the identity provider.
type User struct {
	ID               uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	FirstName        string    `json:"firstName" db:"first_name" gorm:"type:varchar(50);not null"`
	LastName         string    `json:"lastName" db:"last_name" gorm:"type:varchar(50);not null"`
	Email            string    `json:"email" db:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	ImageData        []byte    `json:"-" db:"image_data"`
	ImageContentType string    `json:"imageContentType,omitempty" db:"image_content_type" gorm:"type:varchar(100)"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
