package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
)

// resolveNotebook accepts a notebook id or, failing that, a case-insensitive
// name. An empty reference means "unfiled".
func resolveNotebook(ws *jotter.Workspace, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if _, ok := ws.Notebooks.Get(ref); ok {
		return ref, nil
	}
	for _, nb := range ws.Notebooks.List() {
		if strings.EqualFold(nb.Name, ref) {
			return nb.ID, nil
		}
	}
	return "", errNotFound("notebook", ref)
}

func newListCmd(a *app) *cobra.Command {
	var (
		notebook string
		tag      string
		query    string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
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
			ws.Notes.SetCriteria(jotter.Criteria{NotebookID: nb, Tag: tag, Query: query})
			visible := ws.Notes.Filtered()

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), visible)
			}
			return printNotes(cmd.OutOrStdout(), ws, visible)
		},
	}
	cmd.Flags().StringVar(&notebook, "notebook", "", "Only notes in this notebook (id or name)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only notes carrying this tag")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only notes whose title, content or tags contain this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			n, ok := ws.Notes.Get(args[0])
			if !ok {
				return errNotFound("note", args[0])
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			printNote(cmd.OutOrStdout(), ws, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

// patchFlags registers the editable note fields on cmd.
type patchFlags struct {
	title    string
	content  string
	notebook string
	tags     []string
}

func (p *patchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&p.content, "content", "c", "", "Note content")
	cmd.Flags().StringVar(&p.notebook, "notebook", "", "Notebook id or name; empty to unfile")
	cmd.Flags().StringSliceVar(&p.tags, "tag", nil, "Tags (repeatable or comma-separated); replaces existing tags")
}

// patch builds a patch from the flags the user actually passed.
func (p *patchFlags) patch(cmd *cobra.Command, ws *jotter.Workspace) (jotter.Patch, error) {
	var patch jotter.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch = patch.SetTitle(p.title)
	}
	if flags.Changed("content") {
		patch = patch.SetContent(p.content)
	}
	if flags.Changed("notebook") {
		nb, err := resolveNotebook(ws, p.notebook)
		if err != nil {
			return patch, err
		}
		patch = patch.SetNotebook(nb)
	}
	if flags.Changed("tag") {
		patch = patch.SetTags(p.tags...)
	}
	return patch, nil
}

func newNewCmd(a *app) *cobra.Command {
	var p patchFlags
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			nb, err := resolveNotebook(ws, p.notebook)
			if err != nil {
				return err
			}
			patch, err := p.patch(cmd, ws)
			if err != nil {
				return err
			}
			// Create already files the note.
			patch.NotebookID = nil

			n := ws.Notes.Create(ctx, nb)
			if !patch.Empty() {
				n, _ = ws.Notes.Update(ctx, n.ID, patch)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
			return nil
		},
	}
	p.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var p patchFlags
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			patch, err := p.patch(cmd, ws)
			if err != nil {
				return err
			}
			if patch.Empty() {
				return errNothingToChange
			}
			n, ok := ws.Notes.Update(ctx, args[0], patch)
			if !ok {
				return errNotFound("note", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", n.ID)
			return nil
		},
	}
	p.register(cmd)
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			n, ok := ws.Notes.Get(args[0])
			if !ok {
				return errNotFound("note", args[0])
			}
			confirmer := newConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), yes)
			approved, err := confirmer.Confirm(ctx, fmt.Sprintf("Delete note %q?", n.Title))
			if err != nil {
				return err
			}
			if !approved {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			ws.Notes.Delete(ctx, n.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", n.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
