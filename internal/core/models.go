package core

// Post is a ranked top-3 recommendation list under a category.
// Field names follow the platform's JSON wire format.
type Post struct {
	PostID      string `json:"post_id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Recommend1  string `json:"recommend1"`
	Recommend2  string `json:"recommend2"`
	Recommend3  string `json:"recommend3"`
	Username    string `json:"username"`

	LikeCount uint `json:"like_count"`
	IsLiked   bool `json:"is_liked"`

	// CreatedAt arrives as a UTC timestamp and is rewritten to a
	// local-timezone display string before the post enters any cache.
	CreatedAt string `json:"created_at"`
}

type Comment struct {
	CommentID string `json:"comment_id"`
	PostID    string `json:"post_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Category is static reference data, fetched once per session.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Page is one contiguous slice of a paginated collection. A nil
// LastEvaluatedKey means there are no further pages.
type Page[T any] struct {
	Items            []T
	LastEvaluatedKey *string
}

// LikeResult is the authoritative server state after a like toggle.
type LikeResult struct {
	LikeCount uint `json:"like_count"`
	IsLiked   bool `json:"is_liked"`
}

type UsernameCheck struct {
	IsAvailable bool   `json:"is_available"`
	Message     string `json:"message"`
}

type AuthUser struct {
	Username string `json:"username"`
}

// PostInput is the payload for creating or updating a post.
type PostInput struct {
	Username    string `json:"username"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Recommend1  string `json:"recommend1"`
	Recommend2  string `json:"recommend2"`
	Recommend3  string `json:"recommend3"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
