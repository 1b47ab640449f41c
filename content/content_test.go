package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	db         database.Database
	store      *Store
	moderation *Moderation
	search     *Searcher
	cache      *memoryCache
	admin      *Actor
	moderator  *Actor
	reader     *Actor
}

// tickingClock returns a strictly increasing time so creation order is stable.
func tickingClock() func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Minute)
	}
}

func newEnv(t *testing.T, editPolicy string) *env {
	t.Helper()
	gdb, err := database.Open(config.Settings{
		DBType:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "content.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	db := database.New(gdb)
	clock := tickingClock()
	cache := newMemoryCache()
	return &env{
		db:         db,
		store:      NewStore(db, Config{Cache: cache, Now: clock}),
		moderation: NewModeration(db, editPolicy, clock),
		search:     NewSearcher(db),
		cache:      cache,
		admin:      &Actor{ID: uuid.New(), Roles: []models.Role{models.RoleAdmin}},
		moderator:  &Actor{ID: uuid.New(), Roles: []models.Role{models.RoleModerator}},
		reader:     &Actor{ID: uuid.New()},
	}
}

func (e *env) blog(t *testing.T, name string) *models.Blog {
	t.Helper()
	blog, err := e.store.CreateBlog(context.Background(), e.admin, BlogInput{Name: name, Description: "All about " + name})
	require.NoError(t, err)
	return blog
}

func (e *env) post(t *testing.T, blog *models.Blog, title string, tags ...string) *models.Post {
	t.Helper()
	post, err := e.store.CreatePost(context.Background(), e.admin, PostInput{
		BlogID:   blog.ID,
		Title:    title,
		Abstract: "Abstract for " + title,
		Content:  "Body text for " + title,
		Tags:     tags,
	})
	require.NoError(t, err)
	return post
}

func (e *env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.DB().Model(model).Count(&n).Error)
	return n
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *errs.ApiErr
	require.True(t, errors.As(err, &apiErr), "expected an api error, got %T", err)
	return apiErr.StatusCode
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func TestRoleGates(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	in := BlogInput{Name: "Gated", Description: "Only admins"}

	_, err := e.store.CreateBlog(ctx, nil, in)
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = e.store.CreateBlog(ctx, e.moderator, in)
	require.Error(t, err)
	assert.True(t, errs.IsInsufficientRoleError(err))
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = e.moderation.Moderate(ctx, e.reader, uuid.New(), ModerationInput{ModeratedBody: "redacted", Reason: models.ReasonOther})
	assert.True(t, errs.IsUnauthorized(err))

	assert.Zero(t, e.count(t, &models.Blog{}))
}

func TestValidationFailures(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()

	_, err := e.store.CreateBlog(ctx, e.admin, BlogInput{Name: "Ok name", Description: "x"})
	require.Error(t, err)
	assert.True(t, errs.IsValidationFailed(err))

	var ve *errs.ValidationErr
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "description", ve.Fields[0].Field)

	blog := e.blog(t, "Validation")
	_, err = e.store.CreatePost(ctx, e.admin, PostInput{
		BlogID:   blog.ID,
		Title:    "Fine title",
		Abstract: "Fine abstract",
		Content:  "Content",
		Location: "Sideways",
		Tags:     []string{"ok", "x"},
	})
	require.ErrorAs(t, err, &ve)
	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Message
	}
	assert.Contains(t, fields, "location")
	assert.Contains(t, fields, "tags[1]")
}

func TestCreateBlogSlug(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()

	blog := e.blog(t, "Café Stories!")
	assert.Equal(t, "cafe-stories", blog.Slug)
	assert.Equal(t, e.admin.ID, blog.AuthorID)
	assert.False(t, blog.CreatedAt.IsZero())

	_, err := e.store.CreateBlog(ctx, e.admin, BlogInput{Name: "cafe   stories", Description: "Same slug"})
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateSlug(err))

	_, err = e.store.CreateBlog(ctx, e.admin, BlogInput{Name: "?!", Description: "No slug"})
	assert.True(t, errs.IsEmptyTitle(err))
	assert.Equal(t, int64(1), e.count(t, &models.Blog{}))
}

func TestCreatePostEmptyTitleWritesNothing(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	blog := e.blog(t, "Empty")

	for _, title := range []string{"", "!!! ... ???"} {
		_, err := e.store.CreatePost(context.Background(), e.admin, PostInput{
			BlogID:   blog.ID,
			Title:    title,
			Abstract: "Abstract",
			Content:  "Content",
			Tags:     []string{"tag"},
		})
		require.Error(t, err)
		assert.True(t, errs.IsEmptyTitle(err), "title %q", title)
	}

	assert.Zero(t, e.count(t, &models.Post{}))
	assert.Zero(t, e.count(t, &models.Tag{}))
}

func TestConcurrentCreatesWithSameSlug(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	blog := e.blog(t, "Race")

	const writers = 8
	results := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = e.store.CreatePost(context.Background(), e.admin, PostInput{
				BlogID:   blog.ID,
				Title:    "Same Title",
				Abstract: "Abstract",
				Content:  "Content",
				Tags:     []string{"race"},
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errs.IsDuplicateSlug(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), e.count(t, &models.Post{}))
	assert.Equal(t, int64(1), e.count(t, &models.Tag{}))
}

// A writer that passed the uniqueness check still loses to the unique index, and that
// rejection surfaces as DuplicateSlug.
func TestUniqueIndexRejectionIsDuplicateSlug(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Race Day")
	post := e.post(t, blog, "Photo Finish")

	err := e.db.Transaction(ctx, func(tx database.Database) error {
		return tx.BlogRepo().Add(ctx, &models.Blog{
			AuthorID:    e.admin.ID,
			Name:        "Race Day",
			Description: "Second writer",
			Slug:        blog.Slug,
			CreatedAt:   base,
		})
	})
	require.Error(t, err)
	mapped := slugWriteError(err, "create", "blog", blog.Slug)
	assert.True(t, errs.IsDuplicateSlug(mapped))
	assert.Equal(t, http.StatusConflict, statusOf(t, mapped))

	err = e.db.Transaction(ctx, func(tx database.Database) error {
		return tx.PostRepo().Add(ctx, &models.Post{
			BlogID:    blog.ID,
			AuthorID:  e.admin.ID,
			Title:     "Photo Finish",
			Abstract:  "Second writer",
			Content:   "Second writer",
			Slug:      post.Slug,
			Location:  models.LocationNormal,
			CreatedAt: base,
		})
	})
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateSlug(slugWriteError(err, "create", "post", post.Slug)))

	assert.Equal(t, int64(1), e.count(t, &models.Blog{}))
	assert.Equal(t, int64(1), e.count(t, &models.Post{}))
}

func TestEditPostToTakenTitleIsAllOrNothing(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Atomic")
	e.post(t, blog, "First Post", "one")
	second := e.post(t, blog, "Second Post", "two", "three")

	title := "First Post"
	abstract := "A brand new abstract"
	_, err := e.store.EditPost(ctx, e.admin, second.ID, PostEdit{
		Title:    &title,
		Abstract: &abstract,
		Tags:     []string{"replaced"},
	})
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateSlug(err))

	got, err := e.db.PostRepo().FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second Post", got.Title)
	assert.Equal(t, "second-post", got.Slug)
	assert.Equal(t, second.Abstract, got.Abstract)
	assert.ElementsMatch(t, []string{"two", "three"}, got.TagTexts())
	assert.Equal(t, 1, got.Version)
}

func TestEditPostReslugsAndReplacesTags(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Edits")
	post := e.post(t, blog, "Draft Title", "draft", "wip")

	title := "Final Title"
	edited, err := e.store.EditPost(ctx, e.admin, post.ID, PostEdit{Title: &title, Tags: []string{"final", "final"}})
	require.NoError(t, err)
	assert.Equal(t, "final-title", edited.Slug)
	assert.NotNil(t, edited.UpdatedAt)
	assert.Equal(t, 2, edited.Version)

	got, err := e.db.PostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final-title", got.Slug)
	assert.Equal(t, []string{"final", "final"}, got.TagTexts())

	// tags are replaced even when only other fields change
	content := "Rewritten"
	_, err = e.store.EditPost(ctx, e.admin, post.ID, PostEdit{Content: &content})
	require.NoError(t, err)
	got, err = e.db.PostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Equal(t, "final-title", got.Slug)
}

func TestEditBlogKeepsSlug(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	blog := e.blog(t, "Original Name")

	name := "Renamed Blog"
	edited, err := e.store.EditBlog(context.Background(), e.admin, blog.ID, BlogEdit{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Blog", edited.Name)
	assert.Equal(t, "original-name", edited.Slug)
	assert.NotNil(t, edited.UpdatedAt)
}

func TestStaleEdits(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Stale")
	post := e.post(t, blog, "Versioned")

	content := "first writer"
	_, err := e.store.EditPost(ctx, e.admin, post.ID, PostEdit{Content: &content, Version: 1})
	require.NoError(t, err)

	content = "second writer"
	_, err = e.store.EditPost(ctx, e.admin, post.ID, PostEdit{Content: &content, Version: 1})
	require.Error(t, err)
	assert.True(t, errs.IsConcurrencyConflict(err))

	require.NoError(t, e.store.DeletePost(ctx, e.admin, post.ID))
	_, err = e.store.EditPost(ctx, e.admin, post.ID, PostEdit{Content: &content, Version: 2})
	assert.True(t, errs.IsNotFound(err))

	name := "Gone"
	require.NoError(t, e.store.DeleteBlog(ctx, e.admin, blog.ID))
	_, err = e.store.EditBlog(ctx, e.admin, blog.ID, BlogEdit{Name: &name})
	assert.True(t, errs.IsNotFound(err))
}

func TestRecordViewConcurrently(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	post := e.post(t, e.blog(t, "Views"), "Popular")

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.store.RecordView(context.Background(), post.ID))
		}()
	}
	wg.Wait()

	got, err := e.db.PostRepo().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.PageViews)

	assert.True(t, errs.IsNotFound(e.store.RecordView(context.Background(), uuid.New())))
}

func TestDeleteBlogCascades(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Doomed")
	keep := e.blog(t, "Survivor")
	survivor := e.post(t, keep, "Still Here", "safe")

	var doomed []*models.Post
	for _, title := range []string{"Doomed One", "Doomed Two"} {
		post := e.post(t, blog, title, "tag")
		_, err := e.moderation.CreateComment(ctx, e.reader, post.ID, CommentInput{Body: "first!"})
		require.NoError(t, err)
		doomed = append(doomed, post)
	}
	require.Equal(t, int64(3), e.count(t, &models.Post{}))

	require.NoError(t, e.store.DeleteBlog(ctx, e.admin, blog.ID))

	exists, err := e.store.BlogExists(ctx, blog.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	for _, p := range doomed {
		exists, err = e.store.PostExists(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	}
	exists, err = e.store.PostExists(ctx, survivor.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, int64(1), e.count(t, &models.Blog{}))
	assert.Equal(t, int64(1), e.count(t, &models.Post{}))
	assert.Equal(t, int64(1), e.count(t, &models.Tag{}))
	assert.Zero(t, e.count(t, &models.Comment{}))

	var orphans int64
	require.NoError(t, e.db.DB().Model(&models.Tag{}).Where("post_id <> ?", survivor.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	assert.True(t, errs.IsNotFound(e.store.DeleteBlog(ctx, e.admin, blog.ID)))
}

func TestGetPostBySlug(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Reading")
	other := e.blog(t, "Elsewhere")
	first := e.post(t, blog, "Chapter One")
	e.post(t, other, "Interlude")
	e.post(t, blog, "Chapter Two")

	require.NoError(t, e.db.UserRepo().Add(ctx, &models.User{ID: e.reader.ID, FirstName: "Ada", LastName: "Reader", Email: "ada@example.com"}))
	comment, err := e.moderation.CreateComment(ctx, e.reader, first.ID, CommentInput{Body: "Loved it"})
	require.NoError(t, err)
	_, err = e.moderation.Moderate(ctx, e.moderator, comment.ID, ModerationInput{ModeratedBody: "[removed]", Reason: models.ReasonShaming})
	require.NoError(t, err)

	detail, err := e.store.GetPostBySlug(ctx, "reading", "chapter-one")
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Post.PageViews)
	assert.Nil(t, detail.Previous)
	require.NotNil(t, detail.Next)
	assert.Equal(t, PostLink{Title: "Interlude", BlogSlug: "elsewhere", Slug: "interlude"}, *detail.Next)

	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "[removed]", detail.Comments[0].DisplayBody)
	assert.Empty(t, detail.Comments[0].Body)
	assert.Equal(t, "Ada Reader", detail.Comments[0].AuthorName)
	assert.Equal(t, "Targeted Shaming", detail.Comments[0].ModerationLabel)

	_, err = e.store.GetPostBySlug(ctx, "elsewhere", "chapter-one")
	assert.True(t, errs.IsNotFound(err))
}

func TestListingsUseDefaultPageSizes(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Listing")
	for _, title := range []string{"P1", "P2", "P3", "P4", "P5"} {
		e.post(t, blog, "Post "+title)
	}

	detail, err := e.store.GetBlogBySlug(ctx, "listing", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, BlogPostsPageSize, detail.Posts.PageSize)
	assert.Equal(t, 2, detail.Posts.TotalPages)
	assert.Equal(t, "Post P5", detail.Posts.Items[0].Title)

	posts, err := e.store.ListPosts(ctx, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, posts.PageNumber)
	assert.Len(t, posts.Items, 5)

	blogs, err := e.store.ListBlogs(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), blogs.TotalCount)
}

func TestHomeFeedAndNavigation(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Front Page")
	top := e.post(t, blog, "Top Story", "news")
	e.post(t, blog, "Quiet Story", "news", "misc")

	location := models.LocationTop
	_, err := e.store.EditPost(ctx, e.admin, top.ID, PostEdit{Location: &location, Tags: []string{"news"}})
	require.NoError(t, err)
	require.NoError(t, e.store.RecordView(ctx, top.ID))

	feed, err := e.store.HomeFeed(ctx)
	require.NoError(t, err)
	require.NotNil(t, feed.Top)
	assert.Equal(t, top.ID, feed.Top.ID)
	assert.Nil(t, feed.Large)
	assert.Equal(t, top.ID, feed.Highlights[0].ID)
	assert.Len(t, feed.Newest, 2)
	assert.Empty(t, feed.Sponsored)

	tags, err := e.store.TagCloud(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"misc", "news"}, tags)
	assert.True(t, e.cache.has(navTagsKey))

	popular, err := e.store.PopularPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "front-page", popular[0].BlogSlug)

	blogs, err := e.store.BlogNav(ctx)
	require.NoError(t, err)
	assert.Equal(t, []BlogLink{{Name: "Front Page", Slug: "front-page"}}, blogs)

	// any content write drops the cached widgets
	e.post(t, blog, "Fresh Story", "fresh")
	assert.False(t, e.cache.has(navTagsKey))
	tags, err = e.store.TagCloud(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "misc", "news"}, tags)
}

func TestSearchService(t *testing.T) {
	e := newEnv(t, config.CommentEditByAuthor)
	ctx := context.Background()
	blog := e.blog(t, "Pets")
	e.post(t, blog, "Category Guide")
	e.post(t, blog, "Dog Facts")

	page, err := e.search.SearchPage(ctx, "cat", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.ResultsCount)
	require.Len(t, page.Results.Items, 1)
	assert.Equal(t, "Category Guide", page.Results.Items[0].Title)

	all, err := e.search.Search(ctx, "").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)
}
