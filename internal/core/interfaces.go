package core

import "context"

// PlatformAPI is the boundary to the platform's HTTP JSON API.
// Implemented by internal/api, stubbed in cache and session tests.
type PlatformAPI interface {
	// RefreshToken re-fetches the security token used on mutating
	// requests. Called once at startup and again whenever a mutation
	// fails with ErrTokenExpired.
	RefreshToken(ctx context.Context) error

	Login(ctx context.Context, creds Credentials) (AuthUser, error)
	Register(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
	AuthUser(ctx context.Context) (AuthUser, error)
	CheckUsername(ctx context.Context, username string) (UsernameCheck, error)

	// Posts lists the feed. A nil category means the "all" feed.
	Posts(ctx context.Context, category *string, cursor *string) (Page[Post], error)
	UserPosts(ctx context.Context, username string, cursor *string) (Page[Post], error)
	UserLikedPosts(ctx context.Context, username string, cursor *string) (Page[Post], error)
	Post(ctx context.Context, postID string) (Post, error)
	CreatePost(ctx context.Context, input PostInput) (Post, error)
	UpdatePost(ctx context.Context, postID string, input PostInput) (Post, error)
	DeletePost(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID string) (LikeResult, error)

	Comments(ctx context.Context, postID string) ([]Comment, error)
	CreateComment(ctx context.Context, postID string, content string) (Comment, error)
	DeleteComment(ctx context.Context, postID string, commentID string) error

	Categories(ctx context.Context) ([]Category, error)
}
