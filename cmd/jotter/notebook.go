package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newNotebookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notebook",
		Aliases: []string{"nb"},
		Short:   "Manage notebooks",
	}
	cmd.AddCommand(
		newNotebookListCmd(a),
		newNotebookAddCmd(a),
		newNotebookRenameCmd(a),
		newNotebookRmCmd(a),
	)
	return cmd
}

func newNotebookListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notebooks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			list := ws.Notebooks.List()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			counts := make(map[string]int)
			for _, n := range ws.Notes.List() {
				counts[n.NotebookID]++
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, nb := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", nb.ID, nb.Name, counts[nb.ID])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newNotebookAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Create a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			nb := ws.Notebooks.Create(ctx, args[0])
			fmt.Fprintln(cmd.OutOrStdout(), nb.ID)
			return nil
		},
	}
}

func newNotebookRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename [id|name] [new name]",
		Short: "Rename a notebook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			id, err := resolveNotebook(ws, args[0])
			if err != nil {
				return err
			}
			ws.Notebooks.Rename(ctx, id, args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "Notebook renamed: %s\n", id)
			return nil
		},
	}
}

func newNotebookRmCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id|name]",
		Short: "Delete a notebook; its notes keep their reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			id, err := resolveNotebook(ws, args[0])
			if err != nil {
				return err
			}
			nb, _ := ws.Notebooks.Get(id)
			confirmer := newConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), yes)
			approved, err := confirmer.Confirm(ctx, fmt.Sprintf("Delete notebook %q?", nb.Name))
			if err != nil {
				return err
			}
			if !approved {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			ws.Notebooks.Delete(ctx, id)
			fmt.Fprintf(cmd.OutOrStdout(), "Notebook deleted: %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
