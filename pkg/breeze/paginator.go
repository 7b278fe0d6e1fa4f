package breeze

import (
	"context"
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrNoMoreItems = errors.New("no more items")
)

// PageLister fetches one page of items. *Client satisfies it.
type PageLister[T KeyedItem] interface {
	List(ctx context.Context, token string, params *ListParams) ([]T, error)
}

// Paginator walks every item of a collection page by page. The key of the
// last item on a page becomes the exclusiveStartKey of the next request.
// Iteration stops on an empty page, on a page shorter than the limit, or
// when the cursor stops advancing.
type Paginator[T KeyedItem] struct {
	ctx       context.Context
	lister    PageLister[T]
	token     string
	limit     int
	startKey  string
	buffer    []T
	index     int
	pages     int
	exhausted bool
	err       error
}

// NewPaginator creates a paginator. limit <= 0 leaves the page size to the
// backend; startKey may be empty to begin at the first item.
func NewPaginator[T KeyedItem](ctx context.Context, lister PageLister[T], token string, limit int, startKey string) *Paginator[T] {
	return &Paginator[T]{
		ctx:      ctx,
		lister:   lister,
		token:    token,
		limit:    limit,
		startKey: startKey,
	}
}

// HasNext reports whether another item is available, fetching the next page
// if the current one is used up.
func (p *Paginator[T]) HasNext() bool {
	if p.index < len(p.buffer) {
		return true
	}

	if p.exhausted || p.err != nil {
		return false
	}

	p.fetch()

	return p.index < len(p.buffer)
}

// Next returns the next item.
func (p *Paginator[T]) Next() (T, error) {
	var zero T

	if !p.HasNext() {
		if p.err != nil {
			return zero, p.err
		}

		return zero, ErrNoMoreItems
	}

	item := p.buffer[p.index]
	p.index++

	return item, nil
}

// All collects every remaining item.
func (p *Paginator[T]) All() ([]T, error) {
	var items []T

	for p.HasNext() {
		item, err := p.Next()
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	if p.err != nil {
		return items, p.err
	}

	return items, nil
}

// ForEach calls fn for every remaining item, stopping at the first error.
func (p *Paginator[T]) ForEach(fn func(T) error) error {
	for p.HasNext() {
		item, err := p.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return p.err
}

// Pages returns how many pages have been fetched so far.
func (p *Paginator[T]) Pages() int {
	return p.pages
}

// Err returns the error that stopped iteration, if any.
func (p *Paginator[T]) Err() error {
	return p.err
}

func (p *Paginator[T]) fetch() {
	page, err := p.lister.List(p.ctx, p.token, &ListParams{
		ExclusiveStartKey: p.startKey,
		Limit:             p.limit,
	})
	if err != nil {
		p.err = fmt.Errorf("fetching page %d: %w", p.pages+1, err)

		return
	}

	p.pages++
	p.buffer = page
	p.index = 0

	if len(page) == 0 || (p.limit > 0 && len(page) < p.limit) {
		p.exhausted = true

		return
	}

	next := page[len(page)-1].Key()
	if next == "" || next == p.startKey {
		p.exhausted = true

		return
	}

	p.startKey = next
}
