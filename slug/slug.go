// Package slug derives URL-safe identifiers from human titles.
package slug

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rpupo63/personal-blog-backend/errs"
)

const separator = '-'

// Namespace is an independent uniqueness scope. Blogs are only checked against blogs.
type Namespace string

const (
	Blogs Namespace = "blogs"
	Posts Namespace = "posts"
)

// Resolver answers whether a slug is free within a namespace.
type Resolver interface {
	IsUnique(ctx context.Context, ns Namespace, slug string) (bool, error)
}

// ToSlug lowercases title, folds accented letters to ASCII, turns every run of
// whitespace or punctuation into one hyphen and drops anything outside [a-z0-9-].
// Apostrophes are dropped without a separator so "Don't" becomes "dont".
// The result is "" when title has no eligible characters.
func ToSlug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteRune(separator)
			}
			pending = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// contractions stay joined
		default:
			pending = true
		}
	}
	return b.String()
}

// Resolve computes the slug for title and checks it is free in ns.
// field names the input field reported back on EmptyTitle.
func Resolve(ctx context.Context, r Resolver, ns Namespace, field, title string) (string, error) {
	s := ToSlug(title)
	if s == "" {
		return "", errs.NewEmptyTitleError(field)
	}

	unique, err := r.IsUnique(ctx, ns, s)
	if err != nil {
		return "", err
	}
	if !unique {
		return "", errs.NewDuplicateSlugError(entityName(ns), s)
	}
	return s, nil
}

func entityName(ns Namespace) string {
	switch ns {
	case Blogs:
		return "blog"
	case Posts:
		return "post"
	default:
		return string(ns)
	}
}
