package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"osusume/internal/cache"
	"osusume/internal/core"
	"osusume/internal/validate"
)

var (
	heading  = color.New(color.FgCyan, color.Bold)
	likedDot = color.New(color.FgMagenta)
	dim      = color.New(color.Faint)
)

func (c *Console) renderPosts(view *cache.PagedView[core.Post], label string) {
	items := view.Items()

	heading.Fprintf(c.out, "── %s (%d件)\n", label, len(items))
	for i, post := range items {
		mark := " "
		if post.IsLiked {
			mark = likedDot.Sprint("♥")
		}
		fmt.Fprintf(c.out, "%3d. %s %s  %s\n", i+1, mark, post.Title, dim.Sprintf("[%s] @%s ♥%d", post.Category, post.Username, post.LikeCount))
	}

	if view.HasMore() {
		dim.Fprintln(c.out, "… `more` で続きを読み込む")
	}
}

func (c *Console) renderDetail(post core.Post, comments []core.Comment) {
	heading.Fprintln(c.out, post.Title)
	dim.Fprintf(c.out, "[%s] @%s %s ♥%d\n", post.Category, post.Username, post.CreatedAt, post.LikeCount)
	if post.Description != "" {
		fmt.Fprintln(c.out, post.Description)
	}

	recs := lo.Filter([]string{post.Recommend1, post.Recommend2, post.Recommend3}, func(r string, _ int) bool {
		return r != ""
	})
	for i, rec := range recs {
		fmt.Fprintf(c.out, "  %d位: %s\n", i+1, rec)
	}

	if comments != nil {
		c.renderComments(comments)
	}
}

func (c *Console) renderComments(comments []core.Comment) {
	heading.Fprintf(c.out, "── コメント (%d件)\n", len(comments))
	for _, comment := range comments {
		fmt.Fprintf(c.out, "@%s %s\n  %s\n", comment.Username, dim.Sprint(comment.CreatedAt, " ", comment.CommentID), comment.Content)
	}
}

// readPostForm prompts for every field of the post form. With a
// non-nil base the previous value is kept when the user enters
// nothing, which makes `edit` a field-by-field overwrite.
func (c *Console) readPostForm(base *core.Post) (validate.PostForm, error) {
	var form validate.PostForm
	if base != nil {
		form = validate.PostForm{
			Category:    base.Category,
			Title:       base.Title,
			Description: base.Description,
			Recommend1:  base.Recommend1,
			Recommend2:  base.Recommend2,
			Recommend3:  base.Recommend3,
		}
	}

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"カテゴリー", &form.Category},
		{"タイトル", &form.Title},
		{"説明（任意）", &form.Description},
		{"おすすめ1位", &form.Recommend1},
		{"おすすめ2位（任意）", &form.Recommend2},
		{"おすすめ3位（任意）", &form.Recommend3},
	}

	for _, field := range fields {
		prompt := field.prompt
		if *field.dst != "" {
			prompt = fmt.Sprintf("%s [%s]", prompt, *field.dst)
		}
		if input := strings.TrimSpace(c.ask(prompt + ": ")); input != "" {
			*field.dst = input
		}
	}

	return form, nil
}
