// Package merge decides whether an incoming chunk extends the previous
// on-disk chunk or starts a new one. It knows nothing about the file
// layout; it only tracks the kind of the most recently written chunk.
package merge

// Decision is the outcome of recording an incoming chunk.
type Decision int

const (
	// New means the chunk must be written as a fresh block.
	New Decision = iota
	// Extend means the chunk's content may be inserted into the
	// previous block, before its closing marker.
	Extend
)

// State tracks the kind of the last written chunk. The zero value is
// the idle state: nothing is open, the next chunk is always New.
type State struct {
	open bool
	kind string
}

// Record evaluates an incoming chunk of the given kind. Consecutive
// mergeable chunks of the same kind yield Extend; everything else
// yields New. Mergeable chunks leave the machine open on their kind,
// non-mergeable chunks drive it idle.
func (s *State) Record(kind string, mergeable bool) Decision {
	if s.open && mergeable && s.kind == kind {
		return Extend
	}
	s.open = mergeable
	s.kind = kind
	if !mergeable {
		s.kind = ""
	}
	return New
}

// Reset drives the machine idle. Every non-content operation (section
// headings, anchors, injected content) calls this before writing, so
// later stream output can never silently merge across it.
func (s *State) Reset() {
	s.open = false
	s.kind = ""
}

// Open reports whether a mergeable chunk is currently extendable, and
// its kind.
func (s *State) Open() (string, bool) {
	return s.kind, s.open
}
