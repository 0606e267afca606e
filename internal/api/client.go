// Package api is the typed client for the platform's HTTP JSON API.
// It owns the process-wide security token and translates failure
// responses into the error taxonomy in internal/core.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"

	"osusume/internal/config"
	"osusume/internal/core"
)

const requestIDHeader = "X-Request-Id"

// csrfTokenHeader carries the security token on every mutating request.
const csrfTokenHeader = "X-CSRF-Token"

// Client implements core.PlatformAPI.
type Client struct {
	Logger *slog.Logger
	Config *config.Config

	client *resty.Client
}

var _ core.PlatformAPI = (*Client)(nil)

func (c *Client) Init(ctx context.Context) error {
	c.Logger = c.Logger.With("component", "api.Client")

	c.client = resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:       2 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
		IdleConnTimeout:     30 * time.Second,
	}).
		SetBaseURL(c.Config.APIURL).
		SetTimeout(c.Config.RequestTimeout)

	c.client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader(requestIDHeader, uuid.NewString())
		return nil
	})

	// The token fetch at startup mirrors the refresh the guard
	// triggers on expiry; a dead backend at startup is not fatal, the
	// first guarded mutation will refresh again.
	if err := c.RefreshToken(ctx); err != nil {
		c.Logger.Warn("initial security token fetch failed", "error", err)
	}

	return nil
}

func (c *Client) Shutdown(context.Context) error {
	return c.client.Close()
}

// RefreshToken fetches a fresh security token and installs it as a
// default header on all subsequent requests.
func (c *Client) RefreshToken(ctx context.Context) error {
	type tokenResponse struct {
		CSRFToken string `json:"csrf_token"`
	}

	res, err := c.r(ctx).
		SetResult(&tokenResponse{}).
		Get("/csrftoken")
	if err != nil {
		return err
	}
	if err := apiError(res); err != nil {
		return err
	}

	c.client.SetHeader(csrfTokenHeader, res.Result().(*tokenResponse).CSRFToken)
	c.Logger.Debug("security token refreshed")
	return nil
}

// r builds a request with context and error-body decoding attached.
func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().
		WithContext(ctx).
		SetError(&errorBody{})
}

// errorBody is the platform's failure response shape. The detail
// string is the contract: token and session expiry are signalled by
// exact literals matched in core.APIError.
type errorBody struct {
	Detail string `json:"detail"`
}

// apiError classifies a failure response; nil for 2xx.
func apiError(res *resty.Response) error {
	if !res.IsError() {
		return nil
	}

	detail := ""
	if body, ok := res.Error().(*errorBody); ok {
		detail = body.Detail
	}
	return &core.APIError{StatusCode: res.StatusCode(), Detail: detail}
}

// displayTime rewrites a UTC wire timestamp into the local display
// format used everywhere in the client. Unparseable values pass
// through untouched; this transform is presentational only.
func displayTime(wire string) string {
	t, err := time.Parse(time.RFC3339, wire)
	if err != nil {
		return wire
	}
	return t.Local().Format("2006/01/02 15:04")
}

func formatPost(p core.Post) core.Post {
	p.CreatedAt = displayTime(p.CreatedAt)
	return p
}

func formatComment(c core.Comment) core.Comment {
	c.CreatedAt = displayTime(c.CreatedAt)
	return c
}
