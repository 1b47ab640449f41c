// Package content owns the blog content lifecycle: blogs, posts and their tags, comment
// moderation and post search. Every mutating call takes the acting user explicitly.
package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/slug"
)

// ImageEncoder turns uploaded bytes into the stored blob and reports its content type.
type ImageEncoder interface {
	Encode(data []byte) ([]byte, error)
	ContentType(data []byte) string
}

// Cache stores derived read models. Misses are reported as found == false.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (found bool, err error)
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// Config wires a Store's collaborators. Nil collaborators are allowed.
type Config struct {
	Images ImageEncoder
	Cache  Cache
	Now    func() time.Time
}

// Store is the content store for blogs, posts and tags.
type Store struct {
	db     database.Database
	images ImageEncoder
	cache  Cache
	now    func() time.Time
	logger zerolog.Logger
}

func NewStore(db database.Database, cfg Config) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		db:     db,
		images: cfg.Images,
		cache:  cfg.Cache,
		now:    cfg.Now,
		logger: log.With().Str("component", "content_store").Logger(),
	}
}

// CreateBlog persists a new blog with a slug derived from its name.
func (s *Store) CreateBlog(ctx context.Context, actor *Actor, in BlogInput) (*models.Blog, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if slug.ToSlug(in.Name) == "" {
		return nil, errs.NewEmptyTitleError("name")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	blog := &models.Blog{
		AuthorID:    actor.ID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   s.now(),
	}
	if err := s.attachImage(in.Image, &blog.ImageData, &blog.ImageContentType); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		value, err := slug.Resolve(ctx, tx.SlugResolver(), slug.Blogs, "name", in.Name)
		if err != nil {
			return err
		}
		blog.Slug = value
		return tx.BlogRepo().Add(ctx, blog)
	})
	if err != nil {
		return nil, slugWriteError(err, "create", "blog", blog.Slug)
	}

	s.invalidateNav(ctx)
	s.logger.Info().Str("blogID", blog.ID.String()).Str("slug", blog.Slug).Msg("Blog created")
	return blog, nil
}

// EditBlog updates name and description. The slug is never regenerated on blog edits.
func (s *Store) EditBlog(ctx context.Context, actor *Actor, id uuid.UUID, in BlogEdit) (*models.Blog, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var edited *models.Blog
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		blog, err := tx.BlogRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{"updated_at": now}
		if in.Name != nil {
			updates["name"] = *in.Name
			blog.Name = *in.Name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
			blog.Description = *in.Description
		}
		if len(in.Image) > 0 {
			if err := s.attachImage(in.Image, &blog.ImageData, &blog.ImageContentType); err != nil {
				return err
			}
			updates["image_data"] = blog.ImageData
			updates["image_content_type"] = blog.ImageContentType
		}

		ok, err := tx.BlogRepo().UpdateVersioned(ctx, id, expectedVersion(in.Version, blog.Version), updates)
		if err != nil {
			return err
		}
		if !ok {
			return staleWrite(ctx, "blog", id, tx.BlogRepo().Exists)
		}
		blog.UpdatedAt = &now
		blog.Version = expectedVersion(in.Version, blog.Version) + 1
		edited = blog
		return nil
	})
	if err != nil {
		return nil, wrapWrite(err, "update", "blog")
	}

	s.invalidateNav(ctx)
	return edited, nil
}

// DeleteBlog hard deletes a blog with its posts and their tags and comments.
func (s *Store) DeleteBlog(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		postIDs, err := tx.PostRepo().IDsByBlog(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.TagRepo().DeleteByPosts(ctx, postIDs); err != nil {
			return err
		}
		if err := tx.CommentRepo().DeleteByPosts(ctx, postIDs); err != nil {
			return err
		}
		if _, err := tx.PostRepo().DeleteByBlog(ctx, id); err != nil {
			return err
		}
		n, err := tx.BlogRepo().Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.NewNotFound("blog")
		}
		return nil
	})
	if err != nil {
		return wrapWrite(err, "delete", "blog")
	}

	s.invalidateNav(ctx)
	s.logger.Info().Str("blogID", id.String()).Msg("Blog deleted")
	return nil
}

// CreatePost persists a post and its tag set in one transaction.
func (s *Store) CreatePost(ctx context.Context, actor *Actor, in PostInput) (*models.Post, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if slug.ToSlug(in.Title) == "" {
		return nil, errs.NewEmptyTitleError("title")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		BlogID:    in.BlogID,
		AuthorID:  actor.ID,
		Title:     in.Title,
		Abstract:  in.Abstract,
		Content:   in.Content,
		Location:  in.Location,
		CreatedAt: s.now(),
	}
	if post.Location == "" {
		post.Location = models.LocationNormal
	}
	if err := s.attachImage(in.Image, &post.ImageData, &post.ImageContentType); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		exists, err := tx.BlogRepo().Exists(ctx, in.BlogID)
		if err != nil {
			return err
		}
		if !exists {
			return errs.NewNotFound("blog")
		}

		value, err := slug.Resolve(ctx, tx.SlugResolver(), slug.Posts, "title", in.Title)
		if err != nil {
			return err
		}
		post.Slug = value
		if err := tx.PostRepo().Add(ctx, post); err != nil {
			return err
		}

		tags, err := tx.TagRepo().ReplaceForPost(ctx, post.ID, post.AuthorID, in.Tags)
		if err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
	if err != nil {
		return nil, slugWriteError(err, "create", "post", post.Slug)
	}

	s.invalidateNav(ctx)
	s.logger.Info().Str("postID", post.ID.String()).Str("slug", post.Slug).Msg("Post created")
	return post, nil
}

// EditPost updates a post and replaces its tags. A title change re-slugs the post; if the new
// slug is taken nothing is written.
func (s *Store) EditPost(ctx context.Context, actor *Actor, id uuid.UUID, in PostEdit) (*models.Post, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Title != nil && slug.ToSlug(*in.Title) == "" {
		return nil, errs.NewEmptyTitleError("title")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var edited *models.Post
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		post, err := tx.PostRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{"updated_at": now}
		if in.Title != nil && *in.Title != post.Title {
			updates["title"] = *in.Title
			post.Title = *in.Title

			if next := slug.ToSlug(*in.Title); next != post.Slug {
				value, err := slug.Resolve(ctx, tx.SlugResolver(), slug.Posts, "title", *in.Title)
				if err != nil {
					return err
				}
				updates["slug"] = value
				post.Slug = value
			}
		}
		if in.Abstract != nil {
			updates["abstract"] = *in.Abstract
			post.Abstract = *in.Abstract
		}
		if in.Content != nil {
			updates["content"] = *in.Content
			post.Content = *in.Content
		}
		if in.Location != nil {
			updates["location"] = *in.Location
			post.Location = *in.Location
		}
		if len(in.Image) > 0 {
			if err := s.attachImage(in.Image, &post.ImageData, &post.ImageContentType); err != nil {
				return err
			}
			updates["image_data"] = post.ImageData
			updates["image_content_type"] = post.ImageContentType
		}

		version := expectedVersion(in.Version, post.Version)
		ok, err := tx.PostRepo().UpdateVersioned(ctx, id, version, updates)
		if err != nil {
			return err
		}
		if !ok {
			return staleWrite(ctx, "post", id, tx.PostRepo().Exists)
		}

		// tags belong to the post's author, whoever edits
		tags, err := tx.TagRepo().ReplaceForPost(ctx, id, post.AuthorID, in.Tags)
		if err != nil {
			return err
		}
		post.Tags = tags
		post.UpdatedAt = &now
		post.Version = version + 1
		edited = post
		return nil
	})
	if err != nil {
		slugValue := ""
		if in.Title != nil {
			slugValue = slug.ToSlug(*in.Title)
		}
		return nil, slugWriteError(err, "update", "post", slugValue)
	}

	s.invalidateNav(ctx)
	return edited, nil
}

// DeletePost hard deletes a post with its tags and comments.
func (s *Store) DeletePost(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		ids := []uuid.UUID{id}
		if err := tx.TagRepo().DeleteByPosts(ctx, ids); err != nil {
			return err
		}
		if err := tx.CommentRepo().DeleteByPosts(ctx, ids); err != nil {
			return err
		}
		n, err := tx.PostRepo().Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.NewNotFound("post")
		}
		return nil
	})
	if err != nil {
		return wrapWrite(err, "delete", "post")
	}

	s.invalidateNav(ctx)
	return nil
}

// RecordView counts one page view in a single atomic statement.
func (s *Store) RecordView(ctx context.Context, postID uuid.UUID) error {
	ok, err := s.db.PostRepo().IncrementViews(ctx, postID)
	if err != nil {
		return errs.NewDatabaseError("record view of", "post", err)
	}
	if !ok {
		return errs.NewNotFound("post")
	}
	return nil
}

func (s *Store) BlogExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.db.BlogRepo().Exists(ctx, id)
}

func (s *Store) PostExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.db.PostRepo().Exists(ctx, id)
}

func (s *Store) attachImage(data []byte, dst *[]byte, contentType *string) error {
	if len(data) == 0 || s.images == nil {
		return nil
	}
	encoded, err := s.images.Encode(data)
	if err != nil {
		return err
	}
	*dst = encoded
	*contentType = s.images.ContentType(data)
	return nil
}

func expectedVersion(requested, stored int) int {
	if requested > 0 {
		return requested
	}
	return stored
}

// staleWrite decides what a conditional update that matched no row means: the row was
// deleted underneath us, or someone else wrote first.
func staleWrite(ctx context.Context, entity string, id uuid.UUID, exists func(context.Context, uuid.UUID) (bool, error)) error {
	found, err := exists(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewNotFound(entity)
	}
	return errs.NewConcurrencyConflictError(entity)
}

// slugWriteError maps a unique index rejection to DuplicateSlug. Two writers that both passed
// the uniqueness check end up here.
func slugWriteError(err error, op, entity, slugValue string) error {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) && errs.IsUniqueViolation(err) {
		return errs.NewDuplicateSlugError(entity, slugValue)
	}
	return wrapWrite(err, op, entity)
}

func wrapWrite(err error, op, entity string) error {
	var ve *errs.ValidationErr
	if errors.As(err, &ve) {
		return ve
	}
	return errs.NewDatabaseError(op, entity, err)
}
