package api

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"osusume/internal/core"
)

// postsPage is the wire shape of every paginated post listing.
type postsPage struct {
	Posts            []core.Post `json:"posts"`
	LastEvaluatedKey *string     `json:"last_evaluated_key"`
}

func (c *Client) listPosts(ctx context.Context, path string, cursor *string) (core.Page[core.Post], error) {
	req := c.r(ctx).
		SetQueryParam("limit", strconv.Itoa(c.Config.PageSize)).
		SetResult(&postsPage{})

	if cursor != nil {
		req.SetQueryParam("last_evaluated_key", *cursor)
	}

	res, err := req.Get(path)
	if err != nil {
		return core.Page[core.Post]{}, err
	}
	if err := apiError(res); err != nil {
		return core.Page[core.Post]{}, err
	}

	pageData := res.Result().(*postsPage)
	return core.Page[core.Post]{
		Items:            lo.Map(pageData.Posts, func(p core.Post, _ int) core.Post { return formatPost(p) }),
		LastEvaluatedKey: pageData.LastEvaluatedKey,
	}, nil
}

// Posts lists the feed, optionally filtered by category.
func (c *Client) Posts(ctx context.Context, category *string, cursor *string) (core.Page[core.Post], error) {
	if category == nil || *category == "" {
		return c.listPosts(ctx, "/posts", cursor)
	}
	return c.listPosts(ctx, "/posts/category/"+*category, cursor)
}

func (c *Client) UserPosts(ctx context.Context, username string, cursor *string) (core.Page[core.Post], error) {
	return c.listPosts(ctx, "/users/"+username+"/posts", cursor)
}

func (c *Client) UserLikedPosts(ctx context.Context, username string, cursor *string) (core.Page[core.Post], error) {
	return c.listPosts(ctx, "/users/"+username+"/liked-posts", cursor)
}

func (c *Client) Post(ctx context.Context, postID string) (core.Post, error) {
	res, err := c.r(ctx).
		SetResult(&core.Post{}).
		Get("/posts/" + postID)
	if err != nil {
		return core.Post{}, err
	}
	if err := apiError(res); err != nil {
		return core.Post{}, err
	}

	return formatPost(*res.Result().(*core.Post)), nil
}

func (c *Client) CreatePost(ctx context.Context, input core.PostInput) (core.Post, error) {
	res, err := c.r(ctx).
		SetBody(input).
		SetResult(&core.Post{}).
		Post("/posts")
	if err != nil {
		return core.Post{}, err
	}
	if err := apiError(res); err != nil {
		return core.Post{}, err
	}

	return formatPost(*res.Result().(*core.Post)), nil
}

func (c *Client) UpdatePost(ctx context.Context, postID string, input core.PostInput) (core.Post, error) {
	res, err := c.r(ctx).
		SetBody(input).
		SetResult(&core.Post{}).
		Put("/posts/" + postID)
	if err != nil {
		return core.Post{}, err
	}
	if err := apiError(res); err != nil {
		return core.Post{}, err
	}

	return formatPost(*res.Result().(*core.Post)), nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	res, err := c.r(ctx).Delete("/posts/" + postID)
	if err != nil {
		return err
	}
	return apiError(res)
}

// ToggleLike flips the viewer's like. The POST body is empty by
// contract; the response carries the authoritative counters.
func (c *Client) ToggleLike(ctx context.Context, postID string) (core.LikeResult, error) {
	res, err := c.r(ctx).
		SetBody(struct{}{}).
		SetResult(&core.LikeResult{}).
		Post("/posts/" + postID + "/like-toggle")
	if err != nil {
		return core.LikeResult{}, err
	}
	if err := apiError(res); err != nil {
		return core.LikeResult{}, err
	}

	return *res.Result().(*core.LikeResult), nil
}
