package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	jlifecycle "github.com/aretw0/jotter/pkg/adapters/lifecycle"
	"github.com/aretw0/jotter/pkg/core"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Print changes as they happen, including edits by other processes",
		Long: `watch prints one line per event until interrupted.
Workspace events are named notes/<id>, notebooks/<id> and tags/<name>;
external edits detected by the fs adapter carry the storage key.
The optional pattern uses glob syntax, e.g. "notes/*" or "**".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}

			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			events, err := ws.Watch(ctx, pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if err := ws.Follow(ctx); err != nil {
				if !errors.Is(err, jotter.ErrNotWatchable) {
					return err
				}
				a.logger.Warn("adapter cannot report external edits", "adapter", ws.Adapter())
			}

			return printEvents(ctx, cmd.OutOrStdout(), jlifecycle.NewSource(events))
		},
	}
}

// printEvents starts src and prints every event it emits, one per line,
// until the source closes.
func printEvents(ctx context.Context, out io.Writer, src lifecycle.Source) error {
	if err := src.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event source: %w", err)
	}
	for e := range src.Events() {
		if ce, ok := e.(core.Event); ok {
			fmt.Fprintf(out, "%s %s\n", time.Unix(ce.Timestamp, 0).UTC().Format(time.RFC3339), ce)
			continue
		}
		fmt.Fprintln(out, e)
	}
	return nil
}
