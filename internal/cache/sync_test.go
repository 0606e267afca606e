package cache_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"osusume/internal/cache"
	"osusume/internal/core"
)

func likedResult(count uint) core.LikeResult {
	return core.LikeResult{LikeCount: count, IsLiked: true}
}

func unlikedResult(count uint) core.LikeResult {
	return core.LikeResult{LikeCount: count, IsLiked: false}
}

func authoredPost(id, author string) core.Post {
	p := post(id)
	p.Username = author
	return p
}

// syncFixture loads a MOVIE feed holding p1 (3 likes, not liked,
// authored by bob), alice's own-posts view holding p2, and alice's
// liked-posts view holding p3.
func syncFixture(t *testing.T) *cache.Store {
	t.Helper()

	api := &stubAPI{}
	api.posts = func(_ context.Context, _ *string, _ *string) (core.Page[core.Post], error) {
		p1 := authoredPost("p1", "bob")
		p1.LikeCount = 3
		return page(nil, p1), nil
	}
	api.userPosts = func(_ context.Context, _ string, _ *string) (core.Page[core.Post], error) {
		return page(nil, authoredPost("p2", "alice")), nil
	}
	api.likedPosts = func(_ context.Context, _ string, _ *string) (core.Page[core.Post], error) {
		p3 := authoredPost("p3", "carol")
		p3.LikeCount = 1
		p3.IsLiked = true
		return page(nil, p3), nil
	}

	store := newStore(t, api)
	_, err := store.Feed(t.Context(), lo.ToPtr("MOVIE"))
	require.NoError(t, err)
	_, err = store.UserPosts(t.Context(), "alice")
	require.NoError(t, err)
	_, err = store.LikedPosts(t.Context(), "alice")
	require.NoError(t, err)
	return store
}

func feedItems(t *testing.T, store *cache.Store, category string) []core.Post {
	t.Helper()

	view, err := store.Feed(t.Context(), lo.ToPtr(category))
	require.NoError(t, err)
	return view.Items()
}

// Liking bob's post from the MOVIE feed: the feed copy is patched in
// place; no cached full copy of p1 exists, so the liked view is
// invalidated and reported for refetch rather than synthesized.
func TestApplyLikeResultFromFeed(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	refetch := store.ApplyLikeResult("p1", "alice", likedResult(4), lo.ToPtr("MOVIE"))
	require.True(t, refetch)

	items := feedItems(t, store, "MOVIE")
	require.Equal(t, uint(4), items[0].LikeCount)
	require.True(t, items[0].IsLiked)
}

// Liking alice's own post synthesizes the liked-view entry from the
// own-posts cache: no refetch, entry prepended to the first page.
func TestApplyLikeResultSynthesizesFromOwnPosts(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	refetch := store.ApplyLikeResult("p2", "alice", likedResult(1), nil)
	require.False(t, refetch)

	liked, err := store.LikedPosts(t.Context(), "alice")
	require.NoError(t, err)

	ids := lo.Map(liked.Items(), func(p core.Post, _ int) string { return p.PostID })
	require.Equal(t, []string{"p2", "p3"}, ids)

	require.Equal(t, uint(1), liked.Items()[0].LikeCount)
	require.True(t, liked.Items()[0].IsLiked)
}

// Like then immediate unlike leaves the liked view exactly as it was.
func TestApplyLikeResultRoundTrip(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	liked, err := store.LikedPosts(t.Context(), "alice")
	require.NoError(t, err)
	before := liked.Items()

	require.False(t, store.ApplyLikeResult("p2", "alice", likedResult(1), nil))
	require.False(t, store.ApplyLikeResult("p2", "alice", unlikedResult(0), nil))

	require.Equal(t, before, liked.Items())
}

// Unliking removes the post from the liked view eagerly.
func TestApplyLikeResultUnlikeRemoves(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	require.False(t, store.ApplyLikeResult("p3", "alice", unlikedResult(0), nil))

	liked, err := store.LikedPosts(t.Context(), "alice")
	require.NoError(t, err)
	require.Empty(t, liked.Items())
}

// A post already present in the liked view is updated in place.
func TestApplyLikeResultUpdatesLikedInPlace(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	require.False(t, store.ApplyLikeResult("p3", "alice", likedResult(7), nil))

	liked, err := store.LikedPosts(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, uint(7), liked.Items()[0].LikeCount)
	require.Equal(t, "p3", liked.Items()[0].PostID)
}

// With no originating category, feed views stay untouched even when
// they hold the post.
func TestApplyLikeResultNilOriginSkipsFeeds(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	store.ApplyLikeResult("p1", "alice", likedResult(4), nil)

	items := feedItems(t, store, "MOVIE")
	require.Equal(t, uint(3), items[0].LikeCount)
	require.False(t, items[0].IsLiked)
}

// A result for a post no view holds is a silent no-op.
func TestApplyLikeResultUnknownPost(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	refetch := store.ApplyLikeResult("p99", "alice", unlikedResult(0), lo.ToPtr("MOVIE"))
	require.False(t, refetch)
	require.Len(t, feedItems(t, store, "MOVIE"), 1)
}

func TestApplyLikeResultUpdatesDetail(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	api.post = func(_ context.Context, postID string) (core.Post, error) {
		p := authoredPost(postID, "bob")
		p.LikeCount = 3
		return p, nil
	}
	store := newStore(t, api)

	_, err := store.PostDetail(t.Context(), "p1")
	require.NoError(t, err)

	store.ApplyLikeResult("p1", "alice", likedResult(4), nil)

	detail, err := store.PostDetail(t.Context(), "p1")
	require.NoError(t, err)
	require.Equal(t, uint(4), detail.LikeCount)
	require.True(t, detail.IsLiked)
}

func TestApplyPostCreatedInvalidatesListViews(t *testing.T) {
	t.Parallel()

	store := syncFixture(t)

	feed, err := store.Feed(t.Context(), lo.ToPtr("MOVIE"))
	require.NoError(t, err)
	own, err := store.UserPosts(t.Context(), "alice")
	require.NoError(t, err)

	store.ApplyPostCreated("alice")

	require.False(t, feed.Loaded())
	require.False(t, own.Loaded())
}

func TestApplyPostUpdatedReplacesDetail(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	api := &stubAPI{}
	api.post = func(_ context.Context, postID string) (core.Post, error) {
		fetches.Add(1)
		return authoredPost(postID, "alice"), nil
	}
	store := newStore(t, api)

	_, err := store.PostDetail(t.Context(), "p2")
	require.NoError(t, err)

	updated := authoredPost("p2", "alice")
	updated.Title = "改訂版"
	store.ApplyPostUpdated("alice", updated)

	detail, err := store.PostDetail(t.Context(), "p2")
	require.NoError(t, err)
	require.Equal(t, "改訂版", detail.Title)
	require.Equal(t, int64(1), fetches.Load())
}

// Deleting a post invalidates every feed and the author's own posts,
// and a later detail request surfaces the server's not-found.
func TestApplyPostDeleted(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	api.posts = func(_ context.Context, _ *string, _ *string) (core.Page[core.Post], error) {
		return page(nil, authoredPost("p7", "alice")), nil
	}
	api.userPosts = func(_ context.Context, _ string, _ *string) (core.Page[core.Post], error) {
		return page(nil, authoredPost("p7", "alice")), nil
	}

	deleted := false
	api.post = func(_ context.Context, postID string) (core.Post, error) {
		if deleted {
			return core.Post{}, &core.APIError{StatusCode: 404, Detail: "Post not found"}
		}
		return authoredPost(postID, "alice"), nil
	}
	store := newStore(t, api)

	all, err := store.Feed(t.Context(), nil)
	require.NoError(t, err)
	movie, err := store.Feed(t.Context(), lo.ToPtr("MOVIE"))
	require.NoError(t, err)
	own, err := store.UserPosts(t.Context(), "alice")
	require.NoError(t, err)
	_, err = store.PostDetail(t.Context(), "p7")
	require.NoError(t, err)

	deleted = true
	store.ApplyPostDeleted("alice", "p7")

	require.False(t, all.Loaded())
	require.False(t, movie.Loaded())
	require.False(t, own.Loaded())

	_, err = store.PostDetail(t.Context(), "p7")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCommentSync(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	api.comments = func(_ context.Context, postID string) ([]core.Comment, error) {
		return []core.Comment{{CommentID: "c1", PostID: postID, Username: "bob", Content: "いいね！"}}, nil
	}
	store := newStore(t, api)

	// Not loaded yet: appends are a no-op, nothing blows up.
	store.ApplyCommentCreated("p1", core.Comment{CommentID: "c2"})

	comments, err := store.Comments(t.Context(), "p1")
	require.NoError(t, err)
	require.Len(t, comments, 1)

	store.ApplyCommentCreated("p1", core.Comment{CommentID: "c2", PostID: "p1", Username: "alice", Content: "同感です"})
	comments, err = store.Comments(t.Context(), "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2"}, lo.Map(comments, func(c core.Comment, _ int) string { return c.CommentID }))

	store.ApplyCommentDeleted("p1", "c1")
	comments, err = store.Comments(t.Context(), "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"c2"}, lo.Map(comments, func(c core.Comment, _ int) string { return c.CommentID }))
}

func TestClearDropsEverything(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	api := &stubAPI{}
	api.posts = func(_ context.Context, _ *string, _ *string) (core.Page[core.Post], error) {
		fetches.Add(1)
		return page(nil, post("p1")), nil
	}
	store := newStore(t, api)

	_, err := store.Feed(t.Context(), nil)
	require.NoError(t, err)
	store.Clear()

	_, err = store.Feed(t.Context(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), fetches.Load())
}
