// Package anchor generates stable, collision-free identifiers for
// navigation targets within one document.
package anchor

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/zeebo/blake3"
)

// Entry is one registered navigation target.
type Entry struct {
	ID      string
	Text    string
	Created time.Time
}

// Registry holds every anchor id issued for a document. Entries are
// never removed; the registry lives as long as the writer.
type Registry struct {
	entries map[string]Entry
	now     func() time.Time
}

// NewRegistry returns an empty registry. now may be nil, in which case
// time.Now is used.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{entries: make(map[string]Entry), now: now}
}

// Seed marks an id as taken without creating a lookup entry for it.
// Used when reopening an existing document, so new anchors cannot
// collide with ids already on disk.
func (r *Registry) Seed(id string) {
	if _, ok := r.entries[id]; !ok {
		r.entries[id] = Entry{ID: id}
	}
}

// Register derives a URL-safe id from requestedID, or from displayText
// when requestedID is empty. Collisions are resolved by appending a
// short suffix derived from the display text and an occurrence
// counter, so resolution is deterministic for a given registration
// sequence. Registration never fails.
func (r *Registry) Register(displayText, requestedID string) string {
	base := slug.Make(requestedID)
	if base == "" {
		base = slug.Make(displayText)
	}
	if base == "" {
		base = "anchor"
	}

	id := base
	for n := 1; ; n++ {
		if _, taken := r.entries[id]; !taken {
			break
		}
		id = base + "-" + disambiguate(displayText, n)
	}

	r.entries[id] = Entry{ID: id, Text: displayText, Created: r.now()}
	return id
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of ids taken.
func (r *Registry) Len() int {
	return len(r.entries)
}

// disambiguate returns a six-hex-character token for the nth collision
// of text.
func disambiguate(text string, n int) string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s#%d", text, n)))
	return fmt.Sprintf("%x", sum[:3])
}
