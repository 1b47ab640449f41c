package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/personal-blog-backend/models"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// ByPost returns the tags of a post
func (r *TagRepo) ByPost(ctx context.Context, postID uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Find(&tags).Error
	return tags, err
}

// ReplaceForPost deletes every tag of the post and inserts texts as given, duplicates included.
// Callers run it inside the transaction that writes the post.
func (r *TagRepo) ReplaceForPost(ctx context.Context, postID, authorID uuid.UUID, texts []string) ([]models.Tag, error) {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Tag{}).Error; err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return []models.Tag{}, nil
	}

	tags := make([]models.Tag, 0, len(texts))
	for _, text := range texts {
		tags = append(tags, models.Tag{PostID: postID, AuthorID: authorID, Text: text})
	}
	if err := r.db.WithContext(ctx).Create(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// DeleteByPosts removes the tags of every listed post
func (r *TagRepo) DeleteByPosts(ctx context.Context, postIDs []uuid.UUID) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Tag{}).Error
}

// DistinctTexts lists every tag text once, alphabetically
func (r *TagRepo) DistinctTexts(ctx context.Context) ([]string, error) {
	var texts []string
	err := r.db.WithContext(ctx).Model(&models.Tag{}).Distinct("text").Order("text").Pluck("text", &texts).Error
	return texts, err
}
