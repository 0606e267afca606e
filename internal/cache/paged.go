package cache

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"osusume/internal/core"
)

// FetchFunc loads one page of a paginated collection. A nil cursor
// requests the first page.
type FetchFunc[T any] func(ctx context.Context, cursor *string) (core.Page[T], error)

// PagedView accumulates the pages of one (resource, key) pair in fetch
// order. Each key owns an independent view; views never share pages.
type PagedView[T any] struct {
	mu    sync.Mutex
	fetch FetchFunc[T]

	pages    []core.Page[T]
	hasMore  bool
	loaded   bool
	fetching bool

	staleAfter time.Duration
	fetchedAt  time.Time

	// gen is bumped on every invalidation so an in-flight fetch whose
	// view was dropped underneath it discards its response.
	gen uint64
}

func newPagedView[T any](fetch FetchFunc[T], staleAfter time.Duration) *PagedView[T] {
	return &PagedView[T]{fetch: fetch, staleAfter: staleAfter}
}

// Load fetches the first page if the view is empty or its staleness
// window has elapsed. A no-op while another fetch is in flight.
func (v *PagedView[T]) Load(ctx context.Context) error {
	v.mu.Lock()

	if v.fetching {
		v.mu.Unlock()
		return nil
	}
	if v.loaded && !v.stale() {
		v.mu.Unlock()
		return nil
	}

	v.pages = nil
	v.loaded = false
	v.fetching = true
	gen := v.gen
	v.mu.Unlock()

	page, err := v.fetch(ctx, nil)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.fetching = false
	if err != nil {
		return err
	}
	if v.gen != gen {
		return nil
	}

	v.pages = []core.Page[T]{page}
	v.hasMore = page.LastEvaluatedKey != nil
	v.loaded = true
	v.fetchedAt = time.Now()
	return nil
}

// LoadMore fetches the next page. A no-op when no further page exists
// or a fetch is already in flight, so concurrent calls cannot duplicate
// pages.
func (v *PagedView[T]) LoadMore(ctx context.Context) error {
	v.mu.Lock()

	if !v.loaded || !v.hasMore || v.fetching {
		v.mu.Unlock()
		return nil
	}

	cursor := v.pages[len(v.pages)-1].LastEvaluatedKey
	v.fetching = true
	gen := v.gen
	v.mu.Unlock()

	page, err := v.fetch(ctx, cursor)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.fetching = false
	if err != nil {
		return err
	}
	if v.gen != gen {
		return nil
	}

	v.pages = append(v.pages, page)
	v.hasMore = page.LastEvaluatedKey != nil
	return nil
}

// Items returns the concatenation of all fetched pages, in fetch order.
func (v *PagedView[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()

	return lo.FlatMap(v.pages, func(p core.Page[T], _ int) []T {
		return p.Items
	})
}

func (v *PagedView[T]) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

func (v *PagedView[T]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Fetching reports whether a page fetch is currently in flight.
func (v *PagedView[T]) Fetching() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetching
}

// Invalidate drops all accumulated pages. The next Load starts from a
// nil cursor; a response from a fetch that was in flight is discarded.
func (v *PagedView[T]) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pages = nil
	v.loaded = false
	v.hasMore = false
	v.gen++
}

// stale must be called with v.mu held. A non-positive staleAfter means
// the view never goes stale.
func (v *PagedView[T]) stale() bool {
	if v.staleAfter <= 0 {
		return false
	}
	return time.Since(v.fetchedAt) > v.staleAfter
}

// updateWhere replaces matching items in place across all pages.
// Whole-item replacement only, never a partial patch.
func (v *PagedView[T]) updateWhere(match func(T) bool, update func(T) T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for pi := range v.pages {
		v.pages[pi].Items = lo.Map(v.pages[pi].Items, func(item T, _ int) T {
			if match(item) {
				return update(item)
			}
			return item
		})
	}
}

// removeWhere drops matching items from every page.
func (v *PagedView[T]) removeWhere(match func(T) bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for pi := range v.pages {
		v.pages[pi].Items = lo.Reject(v.pages[pi].Items, func(item T, _ int) bool {
			return match(item)
		})
	}
}

// find returns the first item matching match across all pages.
func (v *PagedView[T]) find(match func(T) bool) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, page := range v.pages {
		if item, ok := lo.Find(page.Items, match); ok {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// prependFirstPage inserts item at the head of the first page. Reports
// false when the view holds no pages to prepend to.
func (v *PagedView[T]) prependFirstPage(item T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.pages) == 0 {
		return false
	}
	v.pages[0].Items = append([]T{item}, v.pages[0].Items...)
	return true
}
