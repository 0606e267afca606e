package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"osusume/internal/config"
	"osusume/internal/core"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := &Client{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			APIURL:         srv.URL,
			PageSize:       10,
			RequestTimeout: 5 * time.Second,
		},
	}
	require.NoError(t, c.Init(t.Context()))
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestTokenRefreshAndHeaderPropagation(t *testing.T) {
	t.Parallel()

	var likeTokens []string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /csrftoken", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"csrf_token": "tok-1"})
	})
	mux.HandleFunc("POST /posts/p1/like-toggle", func(w http.ResponseWriter, r *http.Request) {
		likeTokens = append(likeTokens, r.Header.Get("X-CSRF-Token"))
		writeJSON(t, w, http.StatusOK, core.LikeResult{LikeCount: 4, IsLiked: true})
	})

	c := newTestClient(t, mux)

	res, err := c.ToggleLike(t.Context(), "p1")
	require.NoError(t, err)
	require.Equal(t, core.LikeResult{LikeCount: 4, IsLiked: true}, res)
	require.Equal(t, []string{"tok-1"}, likeTokens)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		detail string
		want   error
	}{
		{"token expired", 400, core.DetailCSRFExpired, core.ErrTokenExpired},
		{"session expired", 401, core.DetailJWTExpired, core.ErrSessionExpired},
		{"forbidden", 403, "Not the author", core.ErrForbidden},
		{"not found", 404, "Post not found", core.ErrNotFound},
		{"unprocessable", 422, "Invalid input", core.ErrUnprocessable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mux := http.NewServeMux()
			mux.HandleFunc("GET /csrftoken", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, map[string]string{"csrf_token": "tok"})
			})
			mux.HandleFunc("DELETE /posts/p1", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, map[string]string{"detail": tt.detail})
			})

			c := newTestClient(t, mux)

			err := c.DeletePost(t.Context(), "p1")
			require.ErrorIs(t, err, tt.want)

			var apiErr *core.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestPostsPagination(t *testing.T) {
	t.Parallel()

	var cursors []string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /csrftoken", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"csrf_token": "tok"})
	})
	mux.HandleFunc("GET /posts/category/MOVIE", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		cursors = append(cursors, r.URL.Query().Get("last_evaluated_key"))

		writeJSON(t, w, http.StatusOK, postsPage{
			Posts:            []core.Post{{PostID: "p1", CreatedAt: "2025-06-01T12:00:00Z"}},
			LastEvaluatedKey: lo.ToPtr("k1"),
		})
	})

	c := newTestClient(t, mux)

	first, err := c.Posts(t.Context(), lo.ToPtr("MOVIE"), nil)
	require.NoError(t, err)
	require.Equal(t, lo.ToPtr("k1"), first.LastEvaluatedKey)

	_, err = c.Posts(t.Context(), lo.ToPtr("MOVIE"), first.LastEvaluatedKey)
	require.NoError(t, err)

	require.Equal(t, []string{"", "k1"}, cursors)
}

func TestDisplayTime(t *testing.T) {
	t.Parallel()

	formatted := displayTime("2025-06-01T12:34:56Z")
	parsed, err := time.ParseInLocation("2006/01/02 15:04", formatted, time.Local)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 1, 12, 34, 0, 0, time.UTC), parsed.UTC())

	// Unparseable values pass through unchanged.
	require.Equal(t, "yesterday", displayTime("yesterday"))
}
