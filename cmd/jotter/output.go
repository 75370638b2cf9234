package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/jotter"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// notebookName resolves a notebook id for display. Orphaned ids are shown as is.
func notebookName(ws *jotter.Workspace, id string) string {
	if id == "" {
		return "-"
	}
	if nb, ok := ws.Notebooks.Get(id); ok {
		return nb.Name
	}
	return id
}

func printNotes(w io.Writer, ws *jotter.Workspace, list []jotter.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, n := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.UpdatedAt, n.Title, notebookName(ws, n.NotebookID), strings.Join(n.Tags, ","))
	}
	return tw.Flush()
}

func printNote(w io.Writer, ws *jotter.Workspace, n jotter.Note) {
	fmt.Fprintf(w, "ID:       %s\n", n.ID)
	fmt.Fprintf(w, "Title:    %s\n", n.Title)
	fmt.Fprintf(w, "Notebook: %s\n", notebookName(ws, n.NotebookID))
	fmt.Fprintf(w, "Tags:     %s\n", strings.Join(n.Tags, ", "))
	fmt.Fprintf(w, "Created:  %s\n", n.CreatedAt)
	fmt.Fprintf(w, "Updated:  %s\n", n.UpdatedAt)
	if n.Content != "" {
		fmt.Fprintf(w, "\n%s\n", n.Content)
	}
}
