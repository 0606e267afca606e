package cache

import (
	"time"

	"github.com/samber/lo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"osusume/internal/core"
)

var (
	cacheApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osusume_cache_applies_total",
		Help: "The number of mutation results applied to cached views.",
	}, []string{"mutation"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osusume_cache_invalidations_total",
		Help: "The number of cached view invalidations.",
	}, []string{"view"})
)

// ApplyLikeResult propagates the authoritative result of a like toggle
// into every view that may hold a copy of the post, without any network
// call. originCategory names the feed the toggle happened from (empty
// string = the "all" feed); nil means the toggle did not happen in a
// feed context, e.g. on the detail page.
//
// The returned flag is true in the one case the caches cannot be fixed
// in memory: the viewer liked a post that is in no cached view, so the
// liked-posts view was invalidated and must be refetched by the caller.
func (s *Store) ApplyLikeResult(postID, viewer string, result core.LikeResult, originCategory *string) (refetchLiked bool) {
	cacheApplies.WithLabelValues("like").Inc()

	matchPost := func(p core.Post) bool { return p.PostID == postID }
	applyResult := func(p core.Post) core.Post {
		p.LikeCount = result.LikeCount
		p.IsLiked = result.IsLiked
		return p
	}

	s.mu.Lock()
	feed := s.feeds[feedKey(originCategory)]
	own := s.userPosts[viewer]
	liked := s.likedPosts[viewer]
	detail := s.details[postID]
	s.mu.Unlock()

	// 1. The feed the toggle originated from. Absence of the post in
	// this particular category view is not our concern.
	if originCategory != nil && feed != nil {
		feed.updateWhere(matchPost, applyResult)
	}

	// 2. Own posts. Authorship never changes, so this is update-only.
	if own != nil {
		own.updateWhere(matchPost, applyResult)
	}

	// 3. Liked posts.
	if liked != nil && liked.Loaded() {
		switch {
		case !result.IsLiked:
			// Unliking removes the post immediately, no round-trip.
			liked.removeWhere(matchPost)

		default:
			if _, ok := liked.find(matchPost); ok {
				liked.updateWhere(matchPost, applyResult)
				break
			}

			// The post is not in the liked view. Synthesize the entry
			// from the own-posts cache when the viewer is the author;
			// otherwise no full copy exists anywhere and the view has
			// to be refetched.
			var synthesized bool
			if own != nil {
				if source, ok := own.find(matchPost); ok {
					synthesized = liked.prependFirstPage(applyResult(source))
				}
			}
			if !synthesized {
				liked.Invalidate()
				cacheInvalidations.WithLabelValues("liked_posts").Inc()
				refetchLiked = true
			}
		}
	}

	// 4. Detail view.
	s.mu.Lock()
	if detail != nil {
		detail.post = applyResult(detail.post)
	}
	s.mu.Unlock()

	return refetchLiked
}

// ApplyPostCreated invalidates every feed view and the author's
// own-posts view. Pagination cursors make positional insertion unsafe,
// so the lists are simply refetched on next access.
func (s *Store) ApplyPostCreated(author string) {
	cacheApplies.WithLabelValues("post_create").Inc()

	s.invalidateFeeds()
	s.invalidateUserPosts(author)
}

// ApplyPostUpdated invalidates the list views and replaces the detail
// view wholesale with the server's returned representation.
func (s *Store) ApplyPostUpdated(author string, post core.Post) {
	cacheApplies.WithLabelValues("post_update").Inc()

	s.invalidateFeeds()
	s.invalidateUserPosts(author)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.details[post.PostID]; ok {
		s.details[post.PostID] = &detailEntry{post: post, fetchedAt: time.Now()}
	}
}

// ApplyPostDeleted invalidates the list views and drops the detail
// entry; a later detail request goes to the server and surfaces its
// not-found.
func (s *Store) ApplyPostDeleted(author, postID string) {
	cacheApplies.WithLabelValues("post_delete").Inc()

	s.invalidateFeeds()
	s.invalidateUserPosts(author)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.details, postID)
	cacheInvalidations.WithLabelValues("detail").Inc()
}

// ApplyCommentCreated appends the server-returned comment to the
// post's comment list. A list that was never loaded needs no update.
func (s *Store) ApplyCommentCreated(postID string, comment core.Comment) {
	cacheApplies.WithLabelValues("comment_create").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.comments[postID]
	if !ok || !view.loaded {
		return
	}
	view.items = append(view.items, comment)
}

// ApplyCommentDeleted removes the comment from the post's loaded
// comment list.
func (s *Store) ApplyCommentDeleted(postID, commentID string) {
	cacheApplies.WithLabelValues("comment_delete").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.comments[postID]
	if !ok || !view.loaded {
		return
	}

	view.items = lo.Reject(view.items, func(c core.Comment, _ int) bool {
		return c.CommentID == commentID
	})
}

func (s *Store) invalidateFeeds() {
	s.mu.Lock()
	views := make([]*PagedView[core.Post], 0, len(s.feeds))
	for _, v := range s.feeds {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		v.Invalidate()
	}
	cacheInvalidations.WithLabelValues("feed").Add(float64(len(views)))
}

func (s *Store) invalidateUserPosts(username string) {
	s.mu.Lock()
	view := s.userPosts[username]
	s.mu.Unlock()

	if view != nil {
		view.Invalidate()
		cacheInvalidations.WithLabelValues("user_posts").Inc()
	}
}
