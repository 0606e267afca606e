package api

import (
	"context"

	"osusume/internal/core"
)

func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	var categories []core.Category

	res, err := c.r(ctx).
		SetResult(&categories).
		Get("/categories")
	if err != nil {
		return nil, err
	}
	if err := apiError(res); err != nil {
		return nil, err
	}

	return categories, nil
}
