// Package jotter is the Composition Root of a single-user note-taking core.
//
// It wires notes, notebooks and tags to a namespaced key-value storage
// medium using the Hexagonal Architecture pattern: the domain packages only
// see the core.Medium port, and adapters provide the bytes.
//
// Features:
//
//   - **Notes, Notebooks, Tags**: notes may be filed under one notebook and carry any number of tags.
//   - **Filtered View**: notebook, tag and free-text filters combined, most recently updated first.
//   - **Pluggable Storage**: memory, directory of JSON files, SQLite, Redis or S3.
//   - **Graceful Degradation**: storage failures fall back to defaults and never surface as errors.
//   - **Events**: every mutation is published on a broker; the fs adapter also reports external edits.
//   - **History**: the fs adapter can commit every write to a git repository in its directory.
//
// Usage:
//
//	ws, err := jotter.Open(ctx,
//		jotter.WithAdapter(jotter.AdapterFS),
//		jotter.WithPath("./.jotter"),
//		jotter.WithLogger(logger),
//	)
//
//	note := ws.Notes.Create(ctx, "")
//	ws.Notes.Update(ctx, note.ID, jotter.Patch{}.SetTitle("Groceries"))
package jotter
