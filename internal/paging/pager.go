// Package paging follows the nextLink cursors returned by Azure list operations and applies an
// optional client side window (offset and limit) on top of them.
package paging

import (
	"context"
	"errors"
	"iter"
)

// ErrNoMorePages is returned by NextPage after the last page was handed out.
var ErrNoMorePages = errors.New("no more pages")

// Page is the envelope of an Azure list response.
type Page[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"nextLink,omitempty"`
}

// FetchFunc retrieves a page. An empty link requests the first page.
type FetchFunc[T any] func(ctx context.Context, link string) (Page[T], error)

// Options configures the client side window.
type Options struct {
	// Limit is the maximum number of items to return across all pages. Zero means no limit.
	Limit int
	// Token resumes a previous listing, see Pager.NextToken.
	Token string
}

// Pager walks a list operation page by page.
type Pager[T any] struct {
	fetch  FetchFunc[T]
	link   string
	offset int
	limit  int
	total  int
	done   bool
	next   *Token
}

// New returns a pager for fetch. It fails when opts.Token is malformed.
func New[T any](fetch FetchFunc[T], opts Options) (*Pager[T], error) {
	tok, err := ParseToken(opts.Token)
	if err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	return &Pager[T]{
		fetch:  fetch,
		link:   tok.NextLink,
		offset: tok.Offset,
		limit:  opts.Limit,
	}, nil
}

// More reports whether NextPage may return further items.
func (p *Pager[T]) More() bool {
	return !p.done
}

// NextPage fetches the next page and returns the items that fall into the window. A failed fetch
// leaves the pager untouched so the call can be repeated.
func (p *Pager[T]) NextPage(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, ErrNoMorePages
	}
	link := p.link
	page, err := p.fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	items := page.Value
	skip := min(p.offset, len(items))
	items = items[skip:]
	p.offset = 0

	if p.limit > 0 {
		if remaining := p.limit - p.total; len(items) > remaining {
			items = items[:remaining]
			p.total += remaining
			p.done = true
			p.next = &Token{NextLink: link, Offset: skip + remaining}
			return items, nil
		}
	}

	p.total += len(items)
	p.link = page.NextLink
	switch {
	case page.NextLink == "":
		p.done = true
		p.next = nil
	case p.limit > 0 && p.total >= p.limit:
		p.done = true
		p.next = &Token{NextLink: page.NextLink}
	}
	return items, nil
}

// NextToken returns the continuation token after the window was filled, or an empty string when
// the listing is complete or still in progress.
func (p *Pager[T]) NextToken() string {
	if !p.done || p.next == nil {
		return ""
	}
	return p.next.Encode()
}

// All drains the pager.
func (p *Pager[T]) All(ctx context.Context) ([]T, error) {
	result := []T{}
	for p.More() {
		items, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		result = append(result, items...)
	}
	return result, nil
}

// Items iterates over all items, fetching pages on demand. Iteration stops at the first error.
func (p *Pager[T]) Items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.More() {
			items, err := p.NextPage(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
