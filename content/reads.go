package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

// Default page sizes per listing.
const (
	BlogsPageSize     = 4
	BlogPostsPageSize = 4
	PostsPageSize     = 12
	SearchPageSize    = 5
)

// PostLink points at a neighbouring post.
type PostLink struct {
	Title    string `json:"title"`
	BlogSlug string `json:"blogSlug"`
	Slug     string `json:"slug"`
}

// CommentView is a comment as readers see it. Moderated comments carry only the moderated body.
type CommentView struct {
	models.Comment
	DisplayBody     string `json:"displayBody"`
	AuthorName      string `json:"authorName,omitempty"`
	ModeratorName   string `json:"moderatorName,omitempty"`
	ModerationLabel string `json:"moderationLabel,omitempty"`
}

// PostDetail is a post with its blog, author, comments and neighbours.
type PostDetail struct {
	Post       models.Post   `json:"post"`
	Blog       models.Blog   `json:"blog"`
	AuthorName string        `json:"authorName,omitempty"`
	Tags       []string      `json:"tags"`
	Comments   []CommentView `json:"comments"`
	Previous   *PostLink     `json:"previous,omitempty"`
	Next       *PostLink     `json:"next,omitempty"`
}

// BlogDetail is a blog with one page of its posts.
type BlogDetail struct {
	Blog  models.Blog                `json:"blog"`
	Posts database.Page[models.Post] `json:"posts"`
}

// Image is a stored blob.
type Image struct {
	Data        []byte
	ContentType string
}

func (s *Store) ListBlogs(ctx context.Context, page, pageSize int) (database.Page[models.Blog], error) {
	if pageSize <= 0 {
		pageSize = BlogsPageSize
	}
	p, err := database.PaginateQuery[models.Blog](ctx, s.db.BlogRepo().Query(ctx), database.NewestFirst, page, pageSize)
	if err != nil {
		return p, errs.NewDatabaseError("list", "blogs", err)
	}
	return p, nil
}

func (s *Store) GetBlogBySlug(ctx context.Context, blogSlug string, page, pageSize int) (*BlogDetail, error) {
	blog, err := s.db.BlogRepo().FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	posts, err := s.ListBlogPosts(ctx, blog.ID, page, pageSize)
	if err != nil {
		return nil, err
	}
	blog.ImageData = nil
	return &BlogDetail{Blog: *blog, Posts: posts}, nil
}

func (s *Store) ListBlogPosts(ctx context.Context, blogID uuid.UUID, page, pageSize int) (database.Page[models.Post], error) {
	if pageSize <= 0 {
		pageSize = BlogPostsPageSize
	}
	p, err := database.PaginateQuery[models.Post](ctx, s.db.PostRepo().QueryByBlog(ctx, blogID), database.NewestFirst, page, pageSize, "Tags")
	if err != nil {
		return p, errs.NewDatabaseError("list", "posts", err)
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, page, pageSize int) (database.Page[models.Post], error) {
	if pageSize <= 0 {
		pageSize = PostsPageSize
	}
	p, err := database.PaginateQuery[models.Post](ctx, s.db.PostRepo().Query(ctx), database.NewestFirst, page, pageSize, "Tags")
	if err != nil {
		return p, errs.NewDatabaseError("list", "posts", err)
	}
	return p, nil
}

// GetPostBySlug loads a post for reading and records the view.
func (s *Store) GetPostBySlug(ctx context.Context, blogSlug, postSlug string) (*PostDetail, error) {
	blog, err := s.db.BlogRepo().FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	post, err := s.db.PostRepo().FindBySlug(ctx, blog.ID, postSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}

	if err := s.RecordView(ctx, post.ID); err != nil {
		return nil, err
	}
	post.PageViews++

	prev, next, err := s.db.PostRepo().Neighbours(ctx, *post)
	if err != nil {
		return nil, errs.NewDatabaseError("find neighbours of", "post", err)
	}

	userIDs := []uuid.UUID{post.AuthorID}
	for _, c := range post.Comments {
		userIDs = append(userIDs, c.AuthorID)
		if c.ModeratorID != nil {
			userIDs = append(userIDs, *c.ModeratorID)
		}
	}
	users, err := s.db.UserRepo().FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}

	detail := &PostDetail{
		Blog:       *blog,
		AuthorName: users[post.AuthorID].FullName(),
		Tags:       post.TagTexts(),
		Comments:   commentViews(post.Comments, users),
	}
	detail.Blog.ImageData = nil
	if prev != nil {
		detail.Previous, err = s.link(ctx, *prev, blog)
		if err != nil {
			return nil, err
		}
	}
	if next != nil {
		detail.Next, err = s.link(ctx, *next, blog)
		if err != nil {
			return nil, err
		}
	}

	post.ImageData = nil
	post.Comments = nil
	detail.Post = *post
	return detail, nil
}

// link resolves the blog slug of a neighbour, which may live in another blog.
func (s *Store) link(ctx context.Context, p models.Post, current *models.Blog) (*PostLink, error) {
	blogSlug := current.Slug
	if p.BlogID != current.ID {
		other, err := s.db.BlogRepo().FindByID(ctx, p.BlogID)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "blog", err)
		}
		blogSlug = other.Slug
	}
	return &PostLink{Title: p.Title, BlogSlug: blogSlug, Slug: p.Slug}, nil
}

func commentViews(comments []models.Comment, users map[uuid.UUID]models.User) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		// the original text of a moderated comment stays on the server
		if c.ModeratedAt != nil {
			c.Body = ""
		}
		v := CommentView{
			Comment:     c,
			DisplayBody: c.DisplayBody(),
			AuthorName:  users[c.AuthorID].FullName(),
		}
		if c.ModeratorID != nil {
			v.ModeratorName = users[*c.ModeratorID].FullName()
		}
		if c.ModerationReason != nil {
			v.ModerationLabel = models.DescribeModerationReason(*c.ModerationReason)
		}
		views = append(views, v)
	}
	return views
}

// BlogImage returns the stored image of a blog.
func (s *Store) BlogImage(ctx context.Context, blogSlug string) (*Image, error) {
	blog, err := s.db.BlogRepo().FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	if len(blog.ImageData) == 0 {
		return nil, errs.NewNotFound("blog image")
	}
	return &Image{Data: blog.ImageData, ContentType: blog.ImageContentType}, nil
}

// PostImage returns the stored image of a post.
func (s *Store) PostImage(ctx context.Context, blogSlug, postSlug string) (*Image, error) {
	blog, err := s.db.BlogRepo().FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog", err)
	}
	post, err := s.db.PostRepo().FindBySlug(ctx, blog.ID, postSlug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	if len(post.ImageData) == 0 {
		return nil, errs.NewNotFound("post image")
	}
	return &Image{Data: post.ImageData, ContentType: post.ImageContentType}, nil
}
