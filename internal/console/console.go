// Package console is the interactive shell of the client. It reads
// commands from stdin, drives the session layer and renders results,
// which means every repaint after a mutation comes straight from the
// synchronized caches.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/samber/lo"

	"osusume/internal/cache"
	"osusume/internal/core"
	"osusume/internal/session"
	"osusume/internal/validate"
)

// viewRef names the paged view the user is currently browsing, so
// that `more` and `like` know their context.
type viewRef struct {
	view *cache.PagedView[core.Post]

	// origin is the feed category the view shows, nil when the view
	// is not a feed (own posts, liked posts).
	origin *string
	label  string
}

type Console struct {
	Logger *slog.Logger

	Store   *cache.Store
	Session *session.Session

	in    *bufio.Scanner
	out   io.Writer
	lines chan string

	current *viewRef
}

func (c *Console) Init(context.Context) error {
	c.Logger = c.Logger.With("component", "console.Console")
	c.in = bufio.NewScanner(os.Stdin)
	c.out = os.Stdout

	c.Session.SetConfirm(c.confirm)
	return nil
}

func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "osusume console. `help` lists commands, `quit` exits")

	// All stdin reads go through this channel, so prompts issued
	// mid-command (`ask`, confirmations) share it with the main loop.
	c.lines = make(chan string)
	go func() {
		defer close(c.lines)
		for c.in.Scan() {
			c.lines <- c.in.Text()
		}
	}()

	for {
		c.prompt()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-c.lines:
			if !ok {
				return nil
			}
			cmd, args := splitCommand(line)
			if cmd == "" {
				continue
			}
			if cmd == "quit" || cmd == "exit" {
				return nil
			}
			if err := c.dispatch(ctx, cmd, args); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				color.New(color.FgRed).Fprintln(c.out, session.UserMessage(err))
				c.Logger.Debug("command failed", "command", cmd, "error", err)
			}
		}
	}
}

func (c *Console) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		c.printHelp()
		return nil
	case "feed":
		return c.showFeed(ctx, args)
	case "more":
		return c.loadMore(ctx)
	case "open":
		return c.openPost(ctx, args)
	case "like":
		return c.toggleLike(ctx, args)
	case "mine":
		return c.showUserPosts(ctx)
	case "liked":
		return c.showLikedPosts(ctx)
	case "categories":
		return c.showCategories(ctx)
	case "post":
		return c.createPost(ctx)
	case "edit":
		return c.updatePost(ctx, args)
	case "delete":
		return c.deletePost(ctx, args)
	case "comment":
		return c.createComment(ctx, args)
	case "uncomment":
		return c.deleteComment(ctx, args)
	case "login":
		return c.login(ctx)
	case "register":
		return c.register(ctx)
	case "logout":
		return c.Session.Logout(ctx)
	case "whoami":
		c.whoami()
		return nil
	case "export":
		return c.export(ctx, args)
	case "dump":
		c.dump()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (c *Console) showFeed(ctx context.Context, args []string) error {
	var category *string
	label := "すべて"
	if len(args) > 0 {
		category = &args[0]
		label = args[0]
	}

	view, err := c.Store.Feed(ctx, category)
	if err != nil {
		return err
	}

	c.current = &viewRef{view: view, origin: lo.ToPtr(lo.FromPtr(category)), label: label}
	c.renderPosts(view, label)
	return nil
}

func (c *Console) loadMore(ctx context.Context) error {
	if c.current == nil {
		return errors.New("no view open, run `feed` first")
	}
	if err := c.current.view.LoadMore(ctx); err != nil {
		return err
	}
	c.renderPosts(c.current.view, c.current.label)
	return nil
}

func (c *Console) openPost(ctx context.Context, args []string) error {
	postID, err := c.resolvePostID(args)
	if err != nil {
		return err
	}

	post, err := c.Store.PostDetail(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := c.Store.Comments(ctx, postID)
	if err != nil {
		return err
	}

	c.renderDetail(post, comments)
	return nil
}

func (c *Console) toggleLike(ctx context.Context, args []string) error {
	postID, err := c.resolvePostID(args)
	if err != nil {
		return err
	}

	var origin *string
	if c.current != nil {
		origin = c.current.origin
	}

	result, err := c.Session.ToggleLike(ctx, postID, origin)
	if err != nil {
		return err
	}

	verb := "いいねしました"
	if !result.IsLiked {
		verb = "いいねを取り消しました"
	}
	fmt.Fprintf(c.out, "%s (%d)\n", verb, result.LikeCount)

	if c.current != nil {
		c.renderPosts(c.current.view, c.current.label)
	}
	return nil
}

func (c *Console) showUserPosts(ctx context.Context) error {
	view, err := c.Store.UserPosts(ctx, c.Session.Username())
	if err != nil {
		return err
	}
	c.current = &viewRef{view: view, label: "自分の投稿"}
	c.renderPosts(view, c.current.label)
	return nil
}

func (c *Console) showLikedPosts(ctx context.Context) error {
	view, err := c.Store.LikedPosts(ctx, c.Session.Username())
	if err != nil {
		return err
	}
	c.current = &viewRef{view: view, label: "いいねした投稿"}
	c.renderPosts(view, c.current.label)
	return nil
}

func (c *Console) showCategories(ctx context.Context) error {
	categories, err := c.Store.Categories(ctx)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		fmt.Fprintln(c.out, cat.Name)
	}
	return nil
}

func (c *Console) createPost(ctx context.Context) error {
	form, err := c.readPostForm(nil)
	if err != nil {
		return err
	}

	post, err := c.Session.CreatePost(ctx, form)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintln(c.out, "投稿しました")
	c.renderDetail(post, nil)
	return nil
}

func (c *Console) updatePost(ctx context.Context, args []string) error {
	postID, err := c.resolvePostID(args)
	if err != nil {
		return err
	}

	existing, err := c.Store.PostDetail(ctx, postID)
	if err != nil {
		return err
	}

	form, err := c.readPostForm(&existing)
	if err != nil {
		return err
	}

	post, err := c.Session.UpdatePost(ctx, postID, form)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintln(c.out, "更新しました")
	c.renderDetail(post, nil)
	return nil
}

func (c *Console) deletePost(ctx context.Context, args []string) error {
	postID, err := c.resolvePostID(args)
	if err != nil {
		return err
	}
	if err := c.Session.DeletePost(ctx, postID); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(c.out, "削除しました")
	return nil
}

func (c *Console) createComment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: comment <post> <text>")
	}
	postID, err := c.resolvePostID(args[:1])
	if err != nil {
		return err
	}

	_, err = c.Session.CreateComment(ctx, postID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	comments, err := c.Store.Comments(ctx, postID)
	if err != nil {
		return err
	}
	c.renderComments(comments)
	return nil
}

func (c *Console) deleteComment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: uncomment <post> <comment>")
	}
	return c.Session.DeleteComment(ctx, args[0], args[1])
}

func (c *Console) login(ctx context.Context) error {
	username := c.ask("ユーザー名: ")
	password := c.ask("パスワード: ")

	if err := c.Session.Login(ctx, username, password); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.out, "ようこそ、%sさん\n", c.Session.Username())
	return nil
}

func (c *Console) register(ctx context.Context) error {
	username := c.ask("ユーザー名: ")

	// The availability check runs while the user types the passwords.
	// It never fires for a locally invalid name, so only wait for it
	// when it was actually scheduled.
	var checked chan struct{}
	if validate.Username(username).Valid {
		checked = make(chan struct{})
		c.Session.ScheduleUsernameCheck(ctx, username, func(check core.UsernameCheck, err error) {
			defer close(checked)
			if err != nil || check.IsAvailable {
				return
			}
			color.New(color.FgYellow).Fprintln(c.out, check.Message)
		})
	}

	password := c.ask("パスワード: ")
	confirm := c.ask("パスワード（確認）: ")

	if checked != nil {
		select {
		case <-checked:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := c.Session.Register(ctx, username, password, confirm); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.out, "登録しました。ようこそ、%sさん\n", c.Session.Username())
	return nil
}

func (c *Console) whoami() {
	if !c.Session.Authenticated() {
		fmt.Fprintln(c.out, "未ログイン")
		return
	}
	fmt.Fprintln(c.out, c.Session.Username())
}

func (c *Console) dump() {
	if c.current == nil {
		fmt.Fprintln(c.out, "no view open")
		return
	}

	pp.Fprintln(c.out, c.current.view.Items())
}

// resolvePostID accepts either a post id or a 1-based index into the
// current view.
func (c *Console) resolvePostID(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: <command> <post>")
	}

	arg := args[0]
	if c.current != nil {
		var n int
		if _, err := fmt.Sscanf(arg, "%d", &n); err == nil {
			items := c.current.view.Items()
			if n < 1 || n > len(items) {
				return "", fmt.Errorf("no post #%d in the current view", n)
			}
			return items[n-1].PostID, nil
		}
	}
	return arg, nil
}

func (c *Console) confirm(prompt string) bool {
	answer := c.ask(prompt + " [y/N]: ")
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func (c *Console) ask(prompt string) string {
	fmt.Fprint(c.out, prompt)
	line, ok := <-c.lines
	if !ok {
		return ""
	}
	return line
}

func (c *Console) prompt() {
	name := c.Session.Username()
	if name == "" {
		name = "guest"
	}
	color.New(color.FgCyan).Fprintf(c.out, "%s> ", name)
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `feed [category]        show the feed, optionally one category
more                   load the next page of the current view
open <post>            show a post with its comments
like <post>            toggle a like
mine / liked           your posts, your liked posts
post / edit / delete   create, edit or delete a post
comment <post> <text>  add a comment
uncomment <post> <id>  delete a comment
categories             list categories
login / register / logout / whoami
export <file>          write the current view as JSON lines
dump                   raw dump of the current view
quit                   exit
`)
}

func splitCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
