// Package gallery holds the known identities and their embeddings.
package gallery

import (
	"math"

	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// Entry is one enrolled identity.
type Entry struct {
	Name      string
	Embedding facematch.Embedding
	Path      string // enrollment image the embedding was computed from
}

// Gallery is an ordered, immutable set of entries with unique names.
// Iteration order is the tie-break order for ambiguous matches.
type Gallery struct {
	entries []Entry
	byName  map[string]int
}

// New builds a gallery from entries. Later entries with an already used name are dropped.
func New(entries []Entry) *Gallery {
	g := &Gallery{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := g.byName[e.Name]; dup {
			continue
		}
		g.byName[e.Name] = len(g.entries)
		g.entries = append(g.entries, e)
	}
	return g
}

// Empty returns a gallery without entries.
func Empty() *Gallery {
	return New(nil)
}

// Len returns the number of identities.
func (g *Gallery) Len() int {
	return len(g.entries)
}

// Entries returns a copy of the entries in iteration order.
func (g *Gallery) Entries() []Entry {
	out := make([]Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Names returns identity names in iteration order.
func (g *Gallery) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the entry with exactly this name.
func (g *Gallery) Lookup(name string) (Entry, bool) {
	i, ok := g.byName[name]
	if !ok {
		return Entry{}, false
	}
	return g.entries[i], true
}

// Find returns the first entry whose name equals name ignoring case and diacritics.
func (g *Gallery) Find(name string) (Entry, bool) {
	if e, ok := g.Lookup(name); ok {
		return e, true
	}
	for _, e := range g.entries {
		if facematch.SameName(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// Candidate is a gallery entry within tolerance of a probe.
type Candidate struct {
	Index    int
	Name     string
	Distance float64
}

// Match is the result of comparing one probe against the whole gallery.
type Match struct {
	// Candidates are all entries within tolerance, in gallery order.
	Candidates []Candidate
	// Nearest is the smallest distance to any entry, also for unmatched probes.
	Nearest     float64
	NearestName string
}

// Best returns the chosen identity: the first candidate in gallery order.
func (m Match) Best() (Candidate, bool) {
	if len(m.Candidates) == 0 {
		return Candidate{}, false
	}
	return m.Candidates[0], true
}

// Match compares probe against every entry.
func (g *Gallery) Match(probe facematch.Embedding, tolerance float64) Match {
	m := Match{Nearest: math.Inf(1)}
	for i, e := range g.entries {
		d := facematch.CosineDistance(probe, e.Embedding)
		if d < m.Nearest {
			m.Nearest = d
			m.NearestName = e.Name
		}
		if d <= tolerance {
			m.Candidates = append(m.Candidates, Candidate{Index: i, Name: e.Name, Distance: d})
		}
	}
	return m
}
