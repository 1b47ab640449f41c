package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/slug"
)

// SlugResolver answers slug uniqueness per namespace: blogs are checked against blogs and posts against posts.
type SlugResolver struct {
	db *gorm.DB
}

var _ slug.Resolver = SlugResolver{}

func (s SlugResolver) IsUnique(ctx context.Context, ns slug.Namespace, value string) (bool, error) {
	var model any
	switch ns {
	case slug.Blogs:
		model = &models.Blog{}
	case slug.Posts:
		model = &models.Post{}
	default:
		return false, fmt.Errorf("unknown slug namespace %q", ns)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("slug = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
