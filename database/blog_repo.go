package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *BlogRepo) GetDB() *gorm.DB {
	return r.db
}

// Query returns an unordered query over all blogs, without image bytes.
func (r *BlogRepo) Query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Blog{}).Omit("image_data")
}

// FindAll returns every blog, newest first
func (r *BlogRepo) FindAll(ctx context.Context) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.Query(ctx).Order("created_at DESC").Find(&blogs).Error
	return blogs, err
}

// FindByID returns a blog by its ID
func (r *BlogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).First(&blog, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog")
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// FindBySlug returns a blog by its public slug
func (r *BlogRepo) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).First(&blog, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog")
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// Exists reports whether a blog with id is present
func (r *BlogRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SlugExists reports whether any blog already uses slug
func (r *BlogRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Add inserts a new blog into the database
func (r *BlogRepo) Add(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Omit("Posts").Create(blog).Error
}

// UpdateVersioned applies updates only if the stored version still equals version and bumps it.
// It reports false when no row matched.
func (r *BlogRepo) UpdateVersioned(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (bool, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// Delete removes a blog from the database by id
func (r *BlogRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
