package api

import (
	"context"

	"github.com/samber/lo"

	"osusume/internal/core"
)

func (c *Client) Comments(ctx context.Context, postID string) ([]core.Comment, error) {
	var comments []core.Comment

	res, err := c.r(ctx).
		SetResult(&comments).
		Get("/posts/" + postID + "/comments")
	if err != nil {
		return nil, err
	}
	if err := apiError(res); err != nil {
		return nil, err
	}

	return lo.Map(comments, func(cm core.Comment, _ int) core.Comment { return formatComment(cm) }), nil
}

func (c *Client) CreateComment(ctx context.Context, postID string, content string) (core.Comment, error) {
	type commentInput struct {
		Comment string `json:"comment"`
	}

	res, err := c.r(ctx).
		SetBody(commentInput{Comment: content}).
		SetResult(&core.Comment{}).
		Post("/posts/" + postID + "/comments")
	if err != nil {
		return core.Comment{}, err
	}
	if err := apiError(res); err != nil {
		return core.Comment{}, err
	}

	return formatComment(*res.Result().(*core.Comment)), nil
}

func (c *Client) DeleteComment(ctx context.Context, postID string, commentID string) error {
	res, err := c.r(ctx).Delete("/posts/" + postID + "/comments/" + commentID)
	if err != nil {
		return err
	}
	return apiError(res)
}
