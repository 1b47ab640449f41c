package content

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

const (
	homeListSize   = 4
	popularNavSize = 5
	navTagsKey     = "nav:tags"
	navPopularKey  = "nav:popular"
	navBlogsKey    = "nav:blogs"
)

// HomeFeed is everything the landing page shows.
type HomeFeed struct {
	Top         *models.Post  `json:"top,omitempty"`
	Large       *models.Post  `json:"large,omitempty"`
	BottomLeft  *models.Post  `json:"bottomLeft,omitempty"`
	BottomRight *models.Post  `json:"bottomRight,omitempty"`
	Sponsored   []models.Post `json:"sponsored"`
	Highlights  []models.Post `json:"highlights"`
	Newest      []models.Post `json:"newest"`
}

// HomeFeed loads the placement slots and lists concurrently.
func (s *Store) HomeFeed(ctx context.Context) (*HomeFeed, error) {
	feed := &HomeFeed{}
	posts := s.db.PostRepo()
	g, gctx := errgroup.WithContext(ctx)

	slots := map[models.PostLocation]**models.Post{
		models.LocationTop:         &feed.Top,
		models.LocationLarge:       &feed.Large,
		models.LocationBottomLeft:  &feed.BottomLeft,
		models.LocationBottomRight: &feed.BottomRight,
	}
	for location, dst := range slots {
		g.Go(func() error {
			p, err := posts.FirstAt(gctx, location)
			*dst = p
			return err
		})
	}
	g.Go(func() (err error) {
		feed.Sponsored, err = posts.ListAt(gctx, models.LocationSponsored, homeListSize)
		return err
	})
	g.Go(func() (err error) {
		feed.Highlights, err = posts.MostViewed(gctx, homeListSize)
		return err
	})
	g.Go(func() (err error) {
		feed.Newest, err = posts.Newest(gctx, homeListSize)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("load", "home feed", err)
	}
	return feed, nil
}

// BlogLink is a blog entry in the navigation.
type BlogLink struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagCloud lists every distinct tag text.
func (s *Store) TagCloud(ctx context.Context) ([]string, error) {
	return cached(ctx, s, navTagsKey, func() ([]string, error) {
		return s.db.TagRepo().DistinctTexts(ctx)
	})
}

// PopularPosts lists the most viewed posts as links.
func (s *Store) PopularPosts(ctx context.Context) ([]PostLink, error) {
	return cached(ctx, s, navPopularKey, func() ([]PostLink, error) {
		top, err := s.db.PostRepo().MostViewed(ctx, popularNavSize)
		if err != nil {
			return nil, err
		}
		blogs, err := s.db.BlogRepo().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		slugs := make(map[string]string, len(blogs))
		for _, b := range blogs {
			slugs[b.ID.String()] = b.Slug
		}
		links := make([]PostLink, 0, len(top))
		for _, p := range top {
			links = append(links, PostLink{Title: p.Title, BlogSlug: slugs[p.BlogID.String()], Slug: p.Slug})
		}
		return links, nil
	})
}

// BlogNav lists blogs newest first.
func (s *Store) BlogNav(ctx context.Context) ([]BlogLink, error) {
	return cached(ctx, s, navBlogsKey, func() ([]BlogLink, error) {
		blogs, err := s.db.BlogRepo().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		links := make([]BlogLink, 0, len(blogs))
		for _, b := range blogs {
			links = append(links, BlogLink{Name: b.Name, Slug: b.Slug})
		}
		return links, nil
	})
}

// cached serves key from the cache, loading and storing it on a miss. Cache failures only
// cost a database read.
func cached[T any](ctx context.Context, s *Store, key string, load func() (T, error)) (T, error) {
	var value T
	if s.cache != nil {
		found, err := s.cache.GetJSON(ctx, key, &value)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		} else if found {
			return value, nil
		}
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, errs.NewDatabaseError("load", key, err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, value); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return value, nil
}

func (s *Store) invalidateNav(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, navTagsKey, navPopularKey, navBlogsKey); err != nil {
		s.logger.Warn().Err(err).Msg("Navigation cache invalidation failed")
	}
}
