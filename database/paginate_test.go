package database

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/personal-blog-backend/models"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name       string
		page, size int
		wantPage   int
		wantItems  []int
		wantTotal  int
	}{
		{"first page", 1, 3, 1, []int{1, 2, 3}, 4},
		{"clamped past the end", 5, 3, 4, []int{10}, 4},
		{"clamped below one", -2, 3, 1, []int{1, 2, 3}, 4},
		{"default size", 1, 0, 1, items, 1},
		{"exact fit", 2, 5, 2, []int{6, 7, 8, 9, 10}, 2},
		{"huge size", 1, math.MaxInt, 1, items, 1},
		{"huge size past the end", 3, math.MaxInt, 1, items, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.PageNumber)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, tt.wantTotal, p.TotalPages)
			assert.Equal(t, int64(10), p.TotalCount)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]string{}, 3, 4)
	assert.Equal(t, 1, p.PageNumber)
	assert.Zero(t, p.TotalPages)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrevious())
}

func TestPaginateQuery(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	blog := seedBlog(t, d, "paging")
	for i := 0; i < 7; i++ {
		seedPost(t, d, blog, "Post", "post-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
	}

	page, err := PaginateQuery[models.Post](ctx, d.PostRepo().QueryByBlog(ctx, blog.ID), NewestFirst, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.PageNumber)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(7), page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "post-a", page.Items[0].Slug)
	assert.True(t, page.HasPrevious())
	assert.False(t, page.HasNext())

	all, err := PaginateQuery[models.Post](ctx, d.PostRepo().QueryByBlog(ctx, blog.ID), NewestFirst, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 1, all.PageNumber)
	assert.Equal(t, 1, all.TotalPages)
	assert.Len(t, all.Items, 7)
}
