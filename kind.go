package teehtml

// Kind identifies the kind of a document chunk. The vocabulary is
// stable: external producers and the document stylesheet both key off
// these names.
type Kind int

const (
	// KindStdout is interpreted terminal output from the standard
	// output stream.
	KindStdout Kind = iota
	// KindStderr is interpreted terminal output from the standard
	// error stream.
	KindStderr
	// KindCursor is a cursor-movement group: output whose control
	// sequences could not be replayed into markup safely, rendered as
	// a collapsed detail block.
	KindCursor
	// KindInject is pre-rendered content handed in by a producer.
	KindInject
	// KindSection is a section heading.
	KindSection
	// KindAnchor is a navigation-anchor heading.
	KindAnchor
)

// class returns the CSS class (and merge-state key) for the kind.
func (k Kind) class() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindCursor:
		return "ansi-cursor"
	case KindInject:
		return "inject"
	case KindSection:
		return "section"
	case KindAnchor:
		return "anchor"
	}
	return "unknown"
}

// mergeable reports whether consecutive chunks of this kind may be
// combined into one on-disk block.
func (k Kind) mergeable() bool {
	switch k {
	case KindStdout, KindStderr, KindCursor:
		return true
	}
	return false
}

// String implements fmt.Stringer with the stable kind names.
func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "terminal-out"
	case KindStderr:
		return "terminal-err"
	case KindCursor:
		return "cursor-movement-group"
	case KindInject:
		return "injected-content"
	case KindSection:
		return "section-heading"
	case KindAnchor:
		return "anchor-heading"
	}
	return "unknown"
}
