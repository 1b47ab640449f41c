package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

// NewestFirst is the default listing order for posts and blogs.
const NewestFirst = "created_at DESC"

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *PostRepo) GetDB() *gorm.DB {
	return r.db
}

// Query returns an unordered query over all posts, without image bytes.
func (r *PostRepo) Query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).Omit("image_data")
}

// QueryByBlog narrows Query to one blog
func (r *PostRepo) QueryByBlog(ctx context.Context, blogID uuid.UUID) *gorm.DB {
	return r.Query(ctx).Where("blog_id = ?", blogID)
}

// FindByID returns a post by its ID with its tags
func (r *PostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Tags").First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindBySlug returns a post by slug inside the given blog, with tags and comments
func (r *PostRepo) FindBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&post, "blog_id = ? AND slug = ?", blogID, slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("post")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Exists reports whether a post with id is present
func (r *PostRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SlugExists reports whether any post already uses slug
func (r *PostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// IDsByBlog lists the ids of every post in a blog
func (r *PostRepo) IDsByBlog(ctx context.Context, blogID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("blog_id = ?", blogID).Pluck("id", &ids).Error
	return ids, err
}

// Add inserts a new post into the database. Tags are written separately.
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Tags", "Comments").Create(post).Error
}

// UpdateVersioned applies updates only if the stored version still equals version and bumps it.
func (r *PostRepo) UpdateVersioned(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (bool, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// IncrementViews adds one page view in a single statement so concurrent readers never lose an update.
func (r *PostRepo) IncrementViews(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("page_views", gorm.Expr("page_views + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// Delete removes a post from the database by id
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// DeleteByBlog removes every post of a blog
func (r *PostRepo) DeleteByBlog(ctx context.Context, blogID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "blog_id = ?", blogID)
	return res.RowsAffected, res.Error
}

// Neighbours returns the posts immediately before and after post in global creation order.
func (r *PostRepo) Neighbours(ctx context.Context, post models.Post) (prev, next *models.Post, err error) {
	var before []models.Post
	err = r.Query(ctx).
		Where("created_at < ? OR (created_at = ? AND id < ?)", post.CreatedAt, post.CreatedAt, post.ID).
		Order("created_at DESC, id DESC").Limit(1).Find(&before).Error
	if err != nil {
		return nil, nil, err
	}

	var after []models.Post
	err = r.Query(ctx).
		Where("created_at > ? OR (created_at = ? AND id > ?)", post.CreatedAt, post.CreatedAt, post.ID).
		Order("created_at ASC, id ASC").Limit(1).Find(&after).Error
	if err != nil {
		return nil, nil, err
	}

	if len(before) > 0 {
		prev = &before[0]
	}
	if len(after) > 0 {
		next = &after[0]
	}
	return prev, next, nil
}

// FirstAt returns the newest post placed at location, or nil.
func (r *PostRepo) FirstAt(ctx context.Context, location models.PostLocation) (*models.Post, error) {
	var posts []models.Post
	err := r.Query(ctx).Where("location = ?", location).Order(NewestFirst).Limit(1).Find(&posts).Error
	if err != nil || len(posts) == 0 {
		return nil, err
	}
	return &posts[0], nil
}

// ListAt returns up to limit posts placed at location, newest first.
func (r *PostRepo) ListAt(ctx context.Context, location models.PostLocation, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.Query(ctx).Where("location = ?", location).Order(NewestFirst).Limit(limit).Find(&posts).Error
	return posts, err
}

// MostViewed returns up to limit posts by page views, highest first.
func (r *PostRepo) MostViewed(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.Query(ctx).Order("page_views DESC, created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// Newest returns up to limit posts, newest first.
func (r *PostRepo) Newest(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.Query(ctx).Order(NewestFirst).Limit(limit).Find(&posts).Error
	return posts, err
}
