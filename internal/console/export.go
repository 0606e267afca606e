package console

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"osusume/internal/core"
)

var postsExported = promauto.NewCounter(prometheus.CounterOpts{
	Name: "osusume_posts_exported_total",
	Help: "The total number of posts written by the export command",
})

func (c *Console) export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: export <file>")
	}
	if c.current == nil {
		return errors.New("no view open, run `feed` first")
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	return exportPosts(ctx, c.current.view.Items(), f)
}

// exportPosts streams posts through a pipeline as JSON lines.
func exportPosts(ctx context.Context, posts []core.Post, w io.Writer) error {
	ch := make(chan pips.D[core.Post], len(posts))
	for _, post := range posts {
		ch <- pips.NewD(post)
	}
	close(ch)

	return pips.New[core.Post, any]().
		Then(apply.Map(func(_ context.Context, post core.Post) ([]byte, error) {
			return json.Marshal(post)
		})).
		Then(apply.Map(func(_ context.Context, line []byte) (any, error) {
			if _, err := w.Write(append(line, '\n')); err != nil {
				return nil, err
			}
			postsExported.Inc()
			return nil, nil
		})).
		Run(ctx, ch).
		Wait(ctx)
}
