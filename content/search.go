package content

import (
	"context"

	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

// SearchPage is one page of search hits plus the total number of matches.
type SearchPage struct {
	Term         string                     `json:"term"`
	ResultsCount int64                      `json:"resultsCount"`
	Results      database.Page[models.Post] `json:"results"`
}

// Searcher filters posts by a free text term. It never writes.
type Searcher struct {
	db database.Database
}

func NewSearcher(db database.Database) *Searcher {
	return &Searcher{db: db}
}

// Search returns the lazy result set for term, newest first. An empty term matches every post.
func (s *Searcher) Search(ctx context.Context, term string) database.SearchResults {
	return s.db.PostRepo().Search(ctx, term, database.NewestFirst)
}

// SearchPage loads one page of hits for term.
func (s *Searcher) SearchPage(ctx context.Context, term string, page, pageSize int) (*SearchPage, error) {
	if pageSize <= 0 {
		pageSize = SearchPageSize
	}
	results, err := s.Search(ctx, term).Page(ctx, page, pageSize)
	if err != nil {
		return nil, errs.NewDatabaseError("search", "posts", err)
	}
	return &SearchPage{Term: term, ResultsCount: results.TotalCount, Results: results}, nil
}
