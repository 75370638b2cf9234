package jotter_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/jotter"
)

// Example_basic opens an in-memory workspace, files a note and filters it back.
func Example_basic() {
	ctx := context.Background()

	ws, err := jotter.Open(ctx, jotter.WithAdapter(jotter.AdapterMemory))
	if err != nil {
		log.Fatal(err)
	}
	defer ws.Close()

	work := ws.Notebooks.Create(ctx, "Errands")
	note := ws.Notes.Create(ctx, work.ID)
	ws.Notes.Update(ctx, note.ID, jotter.Patch{}.SetTitle("Groceries list").SetTags("todo", "home"))

	ws.Notes.SetCriteria(jotter.Criteria{NotebookID: work.ID, Query: "grocer"})
	for _, n := range ws.Notes.Filtered() {
		fmt.Println(n.Title, n.Tags)
	}
	fmt.Println(ws.Tags.Has("home"))
	// Output:
	// Groceries list [todo home]
	// true
}

// Example_persistence shows a directory-backed workspace surviving a reopen.
func Example_persistence() {
	ctx := context.Background()
	dir, err := os.MkdirTemp("", "jotter-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ws, err := jotter.Open(ctx, jotter.WithAdapter(jotter.AdapterFS), jotter.WithPath(dir))
	if err != nil {
		log.Fatal(err)
	}
	ws.Tags.Ensure(ctx, "Zebra", "apple")
	ws.Close()

	again, err := jotter.Open(ctx, jotter.WithAdapter(jotter.AdapterFS), jotter.WithPath(dir))
	if err != nil {
		log.Fatal(err)
	}
	defer again.Close()
	fmt.Println(again.Tags.List())
	// Output:
	// [apple idea research todo work Zebra]
}
