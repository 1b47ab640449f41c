package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/slug"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := Open(config.Settings{
		DBType:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "blog.db"),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db)
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedBlog(t *testing.T, d Database, slugValue string) *models.Blog {
	t.Helper()
	blog := &models.Blog{AuthorID: uuid.New(), Name: slugValue, Description: "about " + slugValue, Slug: slugValue, CreatedAt: base}
	require.NoError(t, d.BlogRepo().Add(context.Background(), blog))
	return blog
}

func seedPost(t *testing.T, d Database, blog *models.Blog, title, slugValue string, created time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		BlogID:    blog.ID,
		AuthorID:  blog.AuthorID,
		Title:     title,
		Abstract:  "abstract of " + title,
		Content:   "content of " + title,
		Slug:      slugValue,
		CreatedAt: created,
	}
	require.NoError(t, d.PostRepo().Add(context.Background(), post))
	return post
}

func TestForeignKeysCascade(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	blog := seedBlog(t, d, "travel")

	for i, s := range []string{"first", "second"} {
		post := seedPost(t, d, blog, s, s, base.Add(time.Duration(i)*time.Hour))
		_, err := d.TagRepo().ReplaceForPost(ctx, post.ID, post.AuthorID, []string{"go"})
		require.NoError(t, err)
		require.NoError(t, d.CommentRepo().Add(ctx, &models.Comment{PostID: post.ID, AuthorID: uuid.New(), Body: "nice", CreatedAt: base}))
	}

	// only the parent row is deleted here; the engine removes the rest
	n, err := d.BlogRepo().Delete(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for _, model := range []any{&models.Post{}, &models.Tag{}, &models.Comment{}} {
		var count int64
		require.NoError(t, d.DB().Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left behind", model)
	}
}

func TestIncrementViewsConcurrently(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	post := seedPost(t, d, seedBlog(t, d, "news"), "Hot take", "hot-take", base)

	const n = 25
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := d.PostRepo().IncrementViews(ctx, post.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := d.PostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.PageViews)

	ok, err := d.PostRepo().IncrementViews(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateVersioned(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	blog := seedBlog(t, d, "kitchen")

	ok, err := d.BlogRepo().UpdateVersioned(ctx, blog.ID, 1, map[string]any{"name": "Kitchen Notes"})
	require.NoError(t, err)
	assert.True(t, ok)

	// same stale version again
	ok, err = d.BlogRepo().UpdateVersioned(ctx, blog.ID, 1, map[string]any{"name": "Other"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := d.BlogRepo().FindByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen Notes", got.Name)
	assert.Equal(t, 2, got.Version)
}

func TestNeighbours(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	blog := seedBlog(t, d, "diary")
	first := seedPost(t, d, blog, "One", "one", base)
	second := seedPost(t, d, blog, "Two", "two", base.Add(time.Hour))
	third := seedPost(t, d, blog, "Three", "three", base.Add(2*time.Hour))

	prev, next, err := d.PostRepo().Neighbours(ctx, *second)
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, first.ID, prev.ID)
	assert.Equal(t, third.ID, next.ID)

	prev, next, err = d.PostRepo().Neighbours(ctx, *first)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, second.ID, next.ID)
}

func TestSlugResolverNamespaces(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	blog := seedBlog(t, d, "shared")

	unique, err := d.SlugResolver().IsUnique(ctx, slug.Blogs, "shared")
	require.NoError(t, err)
	assert.False(t, unique)

	// the posts namespace is independent of blogs
	unique, err = d.SlugResolver().IsUnique(ctx, slug.Posts, "shared")
	require.NoError(t, err)
	assert.True(t, unique)

	seedPost(t, d, blog, "Shared", "shared", base)
	unique, err = d.SlugResolver().IsUnique(ctx, slug.Posts, "shared")
	require.NoError(t, err)
	assert.False(t, unique)
}

func TestReplaceTagsKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	post := seedPost(t, d, seedBlog(t, d, "tags"), "Tagged", "tagged", base)

	_, err := d.TagRepo().ReplaceForPost(ctx, post.ID, post.AuthorID, []string{"go", "go", "sql"})
	require.NoError(t, err)
	tags, err := d.TagRepo().ByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 3)

	_, err = d.TagRepo().ReplaceForPost(ctx, post.ID, post.AuthorID, []string{"rust"})
	require.NoError(t, err)
	tags, err = d.TagRepo().ByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "rust", tags[0].Text)

	texts, err := d.TagRepo().DistinctTexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, texts)
}

func TestCommentProjections(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	post := seedPost(t, d, seedBlog(t, d, "queue"), "Queue", "queue", base)

	plain := &models.Comment{PostID: post.ID, AuthorID: uuid.New(), Body: "fine", CreatedAt: base}
	moderatedAt := base.Add(time.Hour)
	flagged := &models.Comment{PostID: post.ID, AuthorID: uuid.New(), Body: "rude", CreatedAt: base, ModeratedAt: &moderatedAt}
	require.NoError(t, d.CommentRepo().Add(ctx, plain))
	require.NoError(t, d.CommentRepo().Add(ctx, flagged))

	all, err := d.CommentRepo().List(ctx, AllComments)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	moderated, err := d.CommentRepo().List(ctx, ModeratedOnly)
	require.NoError(t, err)
	require.Len(t, moderated, 1)
	assert.Equal(t, flagged.ID, moderated[0].ID)

	unmoderated, err := d.CommentRepo().List(ctx, UnmoderatedOnly)
	require.NoError(t, err)
	require.Len(t, unmoderated, 1)
	assert.Equal(t, plain.ID, unmoderated[0].ID)
}

func TestColumnReport(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, d.DB().Exec("ALTER TABLE posts ADD COLUMN legacy_teaser TEXT").Error)

	reports, err := ColumnReport(d.DB())
	require.NoError(t, err)

	byTable := map[string]TableReport{}
	for _, r := range reports {
		byTable[r.Table] = r
	}
	assert.Equal(t, []string{"legacy_teaser"}, byTable["posts"].Unmapped)
	assert.Empty(t, byTable["blogs"].Unmapped)
	assert.False(t, byTable["comments"].Missing)
}
