// Package core holds the domain entities of jotter and the ports its
// registries depend on.
package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the ISO-8601 layout used for every persisted timestamp.
// The fixed millisecond precision keeps lexicographic and chronological
// order identical.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// ID prefixes.
const (
	NotePrefix     = "nt_"
	NotebookPrefix = "nb_"
)

// Note is a user-authored text item.
// An empty NotebookID means the note is unfiled.
type Note struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	NotebookID string   `json:"notebookId"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

type noteJSON struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	NotebookID *string  `json:"notebookId"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

// MarshalJSON writes an unfiled note with a null notebookId.
func (n Note) MarshalJSON() ([]byte, error) {
	out := noteJSON{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if n.NotebookID != "" {
		id := n.NotebookID
		out.NotebookID = &id
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a null or missing notebookId as unfiled.
func (n *Note) UnmarshalJSON(data []byte) error {
	var in noteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Note{
		ID:        in.ID,
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
	if in.NotebookID != nil {
		n.NotebookID = *in.NotebookID
	}
	return nil
}

// HasTag reports whether the note carries tag.
func (n Note) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	return n
}

// Notebook is a named grouping that notes may reference.
type Notebook struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// Patch is a partial update of a note. Nil pointers leave the field as is.
// A nil Tags slice leaves the tags untouched; a non-nil one (even empty)
// replaces them. Setting NotebookID to an empty string unfiles the note.
type Patch struct {
	Title      *string
	Content    *string
	NotebookID *string
	Tags       []string
}

// SetTitle returns a copy of p that sets the title.
func (p Patch) SetTitle(title string) Patch {
	p.Title = &title
	return p
}

// SetContent returns a copy of p that sets the content.
func (p Patch) SetContent(content string) Patch {
	p.Content = &content
	return p
}

// SetNotebook returns a copy of p that assigns the notebook.
func (p Patch) SetNotebook(id string) Patch {
	p.NotebookID = &id
	return p
}

// SetTags returns a copy of p that replaces the tags.
func (p Patch) SetTags(tags ...string) Patch {
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags
	return p
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.NotebookID == nil && p.Tags == nil
}

// Apply merges the patch into n. UpdatedAt is left to the caller.
func (p Patch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.NotebookID != nil {
		n.NotebookID = *p.NotebookID
	}
	if p.Tags != nil {
		n.Tags = UniqueTags(p.Tags)
	}
	return n
}

// UniqueTags drops duplicates and blank names, keeping first occurrences in order.
func UniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NewID returns a globally unique identifier with the given prefix.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// Timestamp formats t with TimeLayout in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Clock returns the current time. Registries accept one so tests can pin it.
type Clock func() time.Time

// Now formats the clock's current time, falling back to time.Now for a nil clock.
func (c Clock) Now() string {
	if c == nil {
		return Timestamp(time.Now())
	}
	return Timestamp(c())
}

// EventType represents the type of change.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a note, notebook, tag, or a persisted key.
// Store events carry IDs of the form "notes/<id>", "notebooks/<id>" and
// "tags/<name>"; medium watch events carry the raw key.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, id string) Event {
	return Event{Type: t, ID: id, Timestamp: time.Now().Unix()}
}

// Event ID builders.
func NoteEventID(id string) string     { return "notes/" + id }
func NotebookEventID(id string) string { return "notebooks/" + id }
func TagEventID(name string) string    { return "tags/" + name }
