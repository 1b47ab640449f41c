package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

// CommentFilter selects a moderation projection.
type CommentFilter int

const (
	AllComments CommentFilter = iota
	ModeratedOnly
	UnmoderatedOnly
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// Query returns comments matching filter, unordered
func (r *CommentRepo) Query(ctx context.Context, filter CommentFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Comment{})
	switch filter {
	case ModeratedOnly:
		q = q.Where("moderated_at IS NOT NULL")
	case UnmoderatedOnly:
		q = q.Where("moderated_at IS NULL")
	}
	return q
}

// List returns every comment matching filter, newest first
func (r *CommentRepo) List(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.Query(ctx, filter).Order("created_at DESC").Find(&comments).Error
	return comments, err
}

// ByPost returns the comments on a post, oldest first
func (r *CommentRepo) ByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// FindByID returns a comment by its ID
func (r *CommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("comment")
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Exists reports whether a comment with id is present
func (r *CommentRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// UpdateVersioned applies updates only if the stored version still equals version and bumps it.
func (r *CommentRepo) UpdateVersioned(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (bool, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// Delete removes a comment from the database by id
func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// DeleteByPosts removes the comments of every listed post
func (r *CommentRepo) DeleteByPosts(ctx context.Context, postIDs []uuid.UUID) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error
}
