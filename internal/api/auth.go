package api

import (
	"context"

	"osusume/internal/core"
)

func (c *Client) Login(ctx context.Context, creds core.Credentials) (core.AuthUser, error) {
	res, err := c.r(ctx).
		SetBody(creds).
		SetResult(&core.AuthUser{}).
		Post("/login")
	if err != nil {
		return core.AuthUser{}, err
	}
	if err := apiError(res); err != nil {
		return core.AuthUser{}, err
	}

	return *res.Result().(*core.AuthUser), nil
}

func (c *Client) Register(ctx context.Context, creds core.Credentials) error {
	res, err := c.r(ctx).
		SetBody(creds).
		Post("/register")
	if err != nil {
		return err
	}
	return apiError(res)
}

// Logout needs a valid security token like any other mutation.
func (c *Client) Logout(ctx context.Context) error {
	res, err := c.r(ctx).
		SetBody(struct{}{}).
		Post("/logout")
	if err != nil {
		return err
	}
	return apiError(res)
}

// AuthUser probes the current session; success is itself the proof of
// being logged in.
func (c *Client) AuthUser(ctx context.Context) (core.AuthUser, error) {
	res, err := c.r(ctx).
		SetResult(&core.AuthUser{}).
		Get("/user")
	if err != nil {
		return core.AuthUser{}, err
	}
	if err := apiError(res); err != nil {
		return core.AuthUser{}, err
	}

	return *res.Result().(*core.AuthUser), nil
}

func (c *Client) CheckUsername(ctx context.Context, username string) (core.UsernameCheck, error) {
	res, err := c.r(ctx).
		SetResult(&core.UsernameCheck{}).
		Get("/check-username/" + username)
	if err != nil {
		return core.UsernameCheck{}, err
	}
	if err := apiError(res); err != nil {
		return core.UsernameCheck{}, err
	}

	return *res.Result().(*core.UsernameCheck), nil
}
