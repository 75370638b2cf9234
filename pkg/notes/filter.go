package notes

import (
	"slices"
	"strings"

	"github.com/aretw0/jotter/pkg/core"
)

// Criteria selects the visible notes. Empty fields do not filter.
type Criteria struct {
	NotebookID string
	Tag        string
	Query      string
}

// Predicate decides whether a note survives one criterion.
type Predicate func(core.Note) bool

// Predicates returns one independent predicate per active criterion.
// They are pure and combined with AND, so the order in which they are
// applied has no effect on the result.
func (c Criteria) Predicates() []Predicate {
	var ps []Predicate
	if c.NotebookID != "" {
		nb := c.NotebookID
		ps = append(ps, func(n core.Note) bool { return n.NotebookID == nb })
	}
	if c.Tag != "" {
		tag := c.Tag
		ps = append(ps, func(n core.Note) bool { return n.HasTag(tag) })
	}
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		ps = append(ps, func(n core.Note) bool { return matchesQuery(n, q) })
	}
	return ps
}

// Matches reports whether n passes every active criterion.
func (c Criteria) Matches(n core.Note) bool {
	for _, p := range c.Predicates() {
		if !p(n) {
			return false
		}
	}
	return true
}

// matchesQuery expects q already trimmed and lower-cased.
func matchesQuery(n core.Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	return slices.ContainsFunc(n.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

// Filter returns the notes matching c, most recently updated first.
// The input slice is not modified.
func Filter(list []core.Note, c Criteria) []core.Note {
	ps := c.Predicates()
	out := make([]core.Note, 0, len(list))
next:
	for _, n := range list {
		for _, p := range ps {
			if !p(n) {
				continue next
			}
		}
		out = append(out, n)
	}
	Sort(out)
	return out
}

// Sort orders notes by UpdatedAt descending in place. Timestamps are
// compared as strings; equal values keep their relative order.
func Sort(list []core.Note) {
	slices.SortStableFunc(list, func(a, b core.Note) int {
		return strings.Compare(b.UpdatedAt, a.UpdatedAt)
	})
}
