// Package cache holds every view of platform data the client keeps in
// memory: category feeds, a user's own and liked posts, single-post
// details, comment lists and categories. The store is the single owner
// of that state; all cross-view updates after a mutation go through the
// synchronizer methods in sync.go.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"osusume/internal/core"
)

// Staleness windows. Detail entries expire faster than list views
// because posts are reopened and edited more actively than feeds are
// rescrolled. Categories are static reference data and never expire.
const (
	feedStaleTime    = time.Minute
	userStaleTime    = time.Minute
	detailStaleTime  = 30 * time.Second
	commentStaleTime = 30 * time.Second
)

// allFeedKey keys the unfiltered "all categories" feed.
const allFeedKey = ""

type detailEntry struct {
	post      core.Post
	fetchedAt time.Time
}

type commentView struct {
	items     []core.Comment
	loaded    bool
	fetchedAt time.Time
}

// Store is the process-wide cache, owned by the application root and
// handed to the session by reference. No ambient singleton.
type Store struct {
	Logger *slog.Logger
	API    core.PlatformAPI

	mu         sync.Mutex
	feeds      map[string]*PagedView[core.Post]
	userPosts  map[string]*PagedView[core.Post]
	likedPosts map[string]*PagedView[core.Post]
	details    map[string]*detailEntry
	comments   map[string]*commentView
	categories []core.Category
}

func (s *Store) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "cache.Store")
	s.reset()
	return nil
}

func (s *Store) reset() {
	s.feeds = map[string]*PagedView[core.Post]{}
	s.userPosts = map[string]*PagedView[core.Post]{}
	s.likedPosts = map[string]*PagedView[core.Post]{}
	s.details = map[string]*detailEntry{}
	s.comments = map[string]*commentView{}
}

// Clear drops every cached view. Called on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.Logger.Debug("cache cleared")
}

// Feed returns the loaded feed view for a category; nil requests the
// "all" feed. The view is created lazily on first access.
func (s *Store) Feed(ctx context.Context, category *string) (*PagedView[core.Post], error) {
	s.mu.Lock()
	key := feedKey(category)
	view, ok := s.feeds[key]
	if !ok {
		view = newPagedView(func(ctx context.Context, cursor *string) (core.Page[core.Post], error) {
			return s.API.Posts(ctx, category, cursor)
		}, feedStaleTime)
		s.feeds[key] = view
	}
	s.mu.Unlock()

	return view, view.Load(ctx)
}

// UserPosts returns the view of posts authored by username.
func (s *Store) UserPosts(ctx context.Context, username string) (*PagedView[core.Post], error) {
	if username == "" {
		return nil, core.ErrEmptyID
	}

	s.mu.Lock()
	view, ok := s.userPosts[username]
	if !ok {
		view = newPagedView(func(ctx context.Context, cursor *string) (core.Page[core.Post], error) {
			return s.API.UserPosts(ctx, username, cursor)
		}, userStaleTime)
		s.userPosts[username] = view
	}
	s.mu.Unlock()

	return view, view.Load(ctx)
}

// LikedPosts returns the view of posts username has liked.
func (s *Store) LikedPosts(ctx context.Context, username string) (*PagedView[core.Post], error) {
	if username == "" {
		return nil, core.ErrEmptyID
	}

	s.mu.Lock()
	view, ok := s.likedPosts[username]
	if !ok {
		view = newPagedView(func(ctx context.Context, cursor *string) (core.Page[core.Post], error) {
			return s.API.UserLikedPosts(ctx, username, cursor)
		}, userStaleTime)
		s.likedPosts[username] = view
	}
	s.mu.Unlock()

	return view, view.Load(ctx)
}

// PostDetail returns the single-post view, fetching when the entry is
// absent or stale. An empty id is rejected before any network call.
func (s *Store) PostDetail(ctx context.Context, postID string) (core.Post, error) {
	if postID == "" {
		return core.Post{}, core.ErrEmptyID
	}

	s.mu.Lock()
	entry, ok := s.details[postID]
	if ok && time.Since(entry.fetchedAt) <= detailStaleTime {
		post := entry.post
		s.mu.Unlock()
		return post, nil
	}
	s.mu.Unlock()

	post, err := s.API.Post(ctx, postID)
	if err != nil {
		return core.Post{}, err
	}

	s.mu.Lock()
	s.details[postID] = &detailEntry{post: post, fetchedAt: time.Now()}
	s.mu.Unlock()

	return post, nil
}

// Comments returns the comment list for a post.
func (s *Store) Comments(ctx context.Context, postID string) ([]core.Comment, error) {
	if postID == "" {
		return nil, core.ErrEmptyID
	}

	s.mu.Lock()
	view, ok := s.comments[postID]
	if ok && view.loaded && time.Since(view.fetchedAt) <= commentStaleTime {
		items := view.items
		s.mu.Unlock()
		return items, nil
	}
	s.mu.Unlock()

	items, err := s.API.Comments(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.comments[postID] = &commentView{items: items, loaded: true, fetchedAt: time.Now()}
	s.mu.Unlock()

	return items, nil
}

// Categories are fetched once and kept for the whole session.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	s.mu.Lock()
	if s.categories != nil {
		cats := s.categories
		s.mu.Unlock()
		return cats, nil
	}
	s.mu.Unlock()

	cats, err := s.API.Categories(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.categories = cats
	s.mu.Unlock()

	return cats, nil
}

func feedKey(category *string) string {
	if category == nil {
		return allFeedKey
	}
	return *category
}
