package main

import (
	"bufio"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/reactive"
)

// newSearchCmd reads successive query states from stdin, one per line, as a
// search box would produce them while typing. Results are printed only once
// input pauses for the debounce delay, and always for the final line.
func newSearchCmd(a *app) *cobra.Command {
	var (
		notebook string
		tag      string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search interactively, one query per input line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			nb, err := resolveNotebook(ws, notebook)
			if err != nil {
				return err
			}
			ws.Notes.SetNotebookFilter(nb)
			ws.Notes.SetTagFilter(tag)

			out := cmd.OutOrStdout()
			var (
				mu       sync.Mutex
				rendered int
			)
			render := func(gen int, q string) {
				mu.Lock()
				defer mu.Unlock()
				if gen <= rendered {
					return
				}
				rendered = gen
				ws.Notes.SetQuery(q)
				visible := ws.Notes.Filtered()
				fmt.Fprintf(out, "> %q (%d)\n", q, len(visible))
				if err := printNotes(out, ws, visible); err != nil {
					a.logger.Error("failed to print results", "error", err)
				}
			}

			debouncer := reactive.NewDebouncer(a.cfg.SearchDelay)
			defer debouncer.Stop()

			var (
				gen  int
				last string
			)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				gen++
				g, q := gen, scanner.Text()
				last = q
				debouncer.Call(func() { render(g, q) })
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read queries: %w", err)
			}

			debouncer.Flush()
			if gen > 0 {
				render(gen, last)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&notebook, "notebook", "", "Only search this notebook (id or name)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only search notes carrying this tag")
	return cmd
}
