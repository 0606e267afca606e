package clicfg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"osusume/pkg/clicfg"
)

type testConfig struct {
	Name     string        `flag:"name"`
	Size     int           `flag:"size"`
	Wait     time.Duration `flag:"wait"`
	Untagged string
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	var got testConfig
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Value: "default"},
			&cli.IntFlag{Name: "size", Value: 5},
			&cli.DurationFlag{Name: "wait", Value: time.Second},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			return clicfg.ParseFlags(c, &got)
		},
	}

	require.NoError(t, cmd.Run(t.Context(), []string{"test", "--name", "osusume", "--wait", "1500ms"}))

	require.Equal(t, "osusume", got.Name)
	require.Equal(t, 5, got.Size)
	require.Equal(t, 1500*time.Millisecond, got.Wait)
	require.Empty(t, got.Untagged)
}

func TestParseFlagsRejectsNonPointer(t *testing.T) {
	t.Parallel()

	cmd := &cli.Command{Name: "test"}
	require.ErrorIs(t, clicfg.ParseFlags(cmd, testConfig{}), clicfg.ErrCannotParseFlags)
}
