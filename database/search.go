package database

import (
	"context"
	"iter"
	"strings"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/personal-blog-backend/models"
)

const searchBatchSize = 50

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchResults is a lazily evaluated post filter. Nothing is read until Count, Page or All is called.
type SearchResults struct {
	query *gorm.DB
	order string
}

// Search filters posts whose title, abstract or content contains term, ignoring case.
// An empty term matches every post. Reads go to a replica when one is registered.
func (r *PostRepo) Search(ctx context.Context, term, order string) SearchResults {
	q := r.Query(ctx).Clauses(dbresolver.Read)
	if term = strings.TrimSpace(term); term != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(abstract) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	return SearchResults{query: q, order: order}
}

// Count returns the number of matches without loading them
func (s SearchResults) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.query.Session(&gorm.Session{}).WithContext(ctx).Count(&total).Error
	return total, err
}

// Page loads one page of matches
func (s SearchResults) Page(ctx context.Context, pageNumber, pageSize int) (Page[models.Post], error) {
	return PaginateQuery[models.Post](ctx, s.query, s.order, pageNumber, pageSize)
}

// All streams every match in batches. Iteration stops at the first error, which is yielded once.
func (s SearchResults) All(ctx context.Context) iter.Seq2[models.Post, error] {
	return func(yield func(models.Post, error) bool) {
		for offset := 0; ; offset += searchBatchSize {
			q := s.query.Session(&gorm.Session{}).WithContext(ctx)
			if s.order != "" {
				q = q.Order(s.order)
			}
			var batch []models.Post
			if err := q.Offset(offset).Limit(searchBatchSize).Find(&batch).Error; err != nil {
				yield(models.Post{}, err)
				return
			}
			for _, p := range batch {
				if !yield(p, nil) {
					return
				}
			}
			if len(batch) < searchBatchSize {
				return
			}
		}
	}
}
