// Package session is the composition layer: it maps each user action
// to a guarded API call, the required confirmation, and the cache
// synchronization that follows a successful mutation. It owns the
// authenticated identity and is the only place errors become
// user-facing text.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"osusume/internal/cache"
	"osusume/internal/core"
	"osusume/internal/guard"
	"osusume/internal/validate"
	"osusume/pkg/debounce"
)

// usernameCheckQuiet is the quiet period before a username
// availability check fires while the user is still typing.
const usernameCheckQuiet = 500 * time.Millisecond

var (
	ErrUsernameTaken = errors.New("username unavailable")
)

// ValidationError carries the per-field messages of a rejected form.
// It never reaches the network.
type ValidationError struct {
	Errors validate.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Messages flattens the field errors in stable field order.
func (e *ValidationError) Messages() []string {
	var out []string
	for _, field := range []string{
		"username", "password", "confirmPassword",
		"category", "title", "description",
		"recommend1", "recommend2", "recommend3", "comment",
	} {
		out = append(out, e.Errors[field]...)
	}
	return out
}

type Session struct {
	Logger *slog.Logger

	API   core.PlatformAPI
	Store *cache.Store

	mu       sync.Mutex
	username string
	authed   bool

	confirm       func(prompt string) bool
	usernameCheck *debounce.Scheduler
}

func (s *Session) Init(ctx context.Context) error {
	s.Logger = s.Logger.With("component", "session.Session")
	s.usernameCheck = debounce.New(usernameCheckQuiet)

	// Probe the existing login cookie; succeeding is itself the proof
	// of an authenticated session.
	if user, err := s.API.AuthUser(ctx); err == nil {
		s.setIdentity(user.Username)
		s.Logger.Info("session restored", "username", user.Username)
	}

	return nil
}

func (s *Session) Shutdown(context.Context) error {
	s.usernameCheck.Cancel()
	return nil
}

// SetConfirm installs the confirmation prompt used before destructive
// operations. Without one, destructive operations are refused.
func (s *Session) SetConfirm(confirm func(prompt string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirm = confirm
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

func (s *Session) setIdentity(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.authed = true
}

func (s *Session) clearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.authed = false
}

// checkErr handles the one error no action recovers from: an expired
// login session forces a local logout before the error propagates.
func (s *Session) checkErr(err error) error {
	if errors.Is(err, core.ErrSessionExpired) {
		s.Logger.Warn("login session expired, logging out")
		s.clearIdentity()
		s.Store.Clear()
	}
	return err
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	if res := validate.LoginInput(username, password); !res.Valid {
		return &ValidationError{Errors: res.Errors}
	}

	user, err := guard.Call(ctx, s.API.RefreshToken, func(ctx context.Context) (core.AuthUser, error) {
		return s.API.Login(ctx, core.Credentials{Username: username, Password: password})
	})
	if err != nil {
		return s.checkErr(err)
	}

	s.setIdentity(user.Username)
	s.Logger.Info("logged in", "username", user.Username)
	return nil
}

// Register validates, checks availability, registers and then logs in,
// the same chain the platform's web client runs.
func (s *Session) Register(ctx context.Context, username, password, confirmPassword string) error {
	errs := validate.FieldErrors{
		"username":        validate.Username(username).Errors,
		"password":        validate.Password(password, username).Errors,
		"confirmPassword": validate.ConfirmPassword(password, confirmPassword).Errors,
	}
	for _, msgs := range errs {
		if len(msgs) > 0 {
			return &ValidationError{Errors: errs}
		}
	}

	check, err := s.API.CheckUsername(ctx, username)
	if err != nil {
		return s.checkErr(err)
	}
	if !check.IsAvailable {
		return ErrUsernameTaken
	}

	creds := core.Credentials{Username: username, Password: password}
	if err := guard.Do(ctx, s.API.RefreshToken, func(ctx context.Context) error {
		return s.API.Register(ctx, creds)
	}); err != nil {
		return s.checkErr(err)
	}

	return s.Login(ctx, username, password)
}

func (s *Session) Logout(ctx context.Context) error {
	err := guard.Do(ctx, s.API.RefreshToken, s.API.Logout)
	if err != nil && !errors.Is(err, core.ErrSessionExpired) {
		return err
	}

	s.clearIdentity()
	s.Store.Clear()
	s.Logger.Info("logged out")
	return nil
}

// ScheduleUsernameCheck runs an availability check against the server
// after the quiet period. New input cancels a pending check, and input
// the local rules already reject never reaches the network.
func (s *Session) ScheduleUsernameCheck(ctx context.Context, username string, report func(core.UsernameCheck, error)) {
	if !validate.Username(username).Valid {
		s.usernameCheck.Cancel()
		return
	}

	s.usernameCheck.Schedule(func() {
		report(s.API.CheckUsername(ctx, username))
	})
}

func (s *Session) CreatePost(ctx context.Context, form validate.PostForm) (core.Post, error) {
	if !s.Authenticated() {
		return core.Post{}, core.ErrNotAuthenticated
	}
	if res := validate.PostFormInput(form); !res.Valid {
		return core.Post{}, &ValidationError{Errors: res.Errors}
	}

	author := s.Username()
	input := postInput(author, form)

	post, err := guard.Call(ctx, s.API.RefreshToken, func(ctx context.Context) (core.Post, error) {
		return s.API.CreatePost(ctx, input)
	})
	if err != nil {
		return core.Post{}, s.checkErr(err)
	}

	s.Store.ApplyPostCreated(author)
	return post, nil
}

func (s *Session) UpdatePost(ctx context.Context, postID string, form validate.PostForm) (core.Post, error) {
	if !s.Authenticated() {
		return core.Post{}, core.ErrNotAuthenticated
	}
	if res := validate.PostFormInput(form); !res.Valid {
		return core.Post{}, &ValidationError{Errors: res.Errors}
	}

	author := s.Username()
	input := postInput(author, form)

	post, err := guard.Call(ctx, s.API.RefreshToken, func(ctx context.Context) (core.Post, error) {
		return s.API.UpdatePost(ctx, postID, input)
	})
	if err != nil {
		return core.Post{}, s.checkErr(err)
	}

	s.Store.ApplyPostUpdated(author, post)
	return post, nil
}

func (s *Session) DeletePost(ctx context.Context, postID string) error {
	if !s.Authenticated() {
		return core.ErrNotAuthenticated
	}
	if !s.confirmed("この投稿を削除しますか？\nこの操作は取り消せません。") {
		return core.ErrCancelled
	}

	if err := guard.Do(ctx, s.API.RefreshToken, func(ctx context.Context) error {
		return s.API.DeletePost(ctx, postID)
	}); err != nil {
		return s.checkErr(err)
	}

	s.Store.ApplyPostDeleted(s.Username(), postID)
	return nil
}

// ToggleLike flips the viewer's like on a post and propagates the
// server's result through every cached view. originCategory names the
// feed the toggle happened from, nil when it happened elsewhere.
func (s *Session) ToggleLike(ctx context.Context, postID string, originCategory *string) (core.LikeResult, error) {
	if !s.Authenticated() {
		return core.LikeResult{}, core.ErrNotAuthenticated
	}

	result, err := guard.Call(ctx, s.API.RefreshToken, func(ctx context.Context) (core.LikeResult, error) {
		return s.API.ToggleLike(ctx, postID)
	})
	if err != nil {
		return core.LikeResult{}, s.checkErr(err)
	}

	viewer := s.Username()
	if s.Store.ApplyLikeResult(postID, viewer, result, originCategory) {
		// No cached copy to synthesize from: refetch the liked view
		// right away. Best effort, the like itself already succeeded.
		if _, err := s.Store.LikedPosts(ctx, viewer); err != nil {
			s.Logger.Warn("liked posts refetch failed", "error", err)
		}
	}

	return result, nil
}

func (s *Session) CreateComment(ctx context.Context, postID, content string) (core.Comment, error) {
	if !s.Authenticated() {
		return core.Comment{}, core.ErrNotAuthenticated
	}
	if res := validate.CommentInput(content); !res.Valid {
		return core.Comment{}, &ValidationError{Errors: res.Errors}
	}

	comment, err := guard.Call(ctx, s.API.RefreshToken, func(ctx context.Context) (core.Comment, error) {
		return s.API.CreateComment(ctx, postID, strings.TrimSpace(content))
	})
	if err != nil {
		return core.Comment{}, s.checkErr(err)
	}

	s.Store.ApplyCommentCreated(postID, comment)
	return comment, nil
}

func (s *Session) DeleteComment(ctx context.Context, postID, commentID string) error {
	if !s.Authenticated() {
		return core.ErrNotAuthenticated
	}
	if !s.confirmed("このコメントを削除しますか？") {
		return core.ErrCancelled
	}

	if err := guard.Do(ctx, s.API.RefreshToken, func(ctx context.Context) error {
		return s.API.DeleteComment(ctx, postID, commentID)
	}); err != nil {
		return s.checkErr(err)
	}

	s.Store.ApplyCommentDeleted(postID, commentID)
	return nil
}

func (s *Session) confirmed(prompt string) bool {
	s.mu.Lock()
	confirm := s.confirm
	s.mu.Unlock()

	return confirm != nil && confirm(prompt)
}

func postInput(author string, form validate.PostForm) core.PostInput {
	return core.PostInput{
		Username:    author,
		Category:    form.Category,
		Title:       form.Title,
		Description: strings.TrimSpace(form.Description),
		Recommend1:  form.Recommend1,
		Recommend2:  form.Recommend2,
		Recommend3:  form.Recommend3,
	}
}
