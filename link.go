package teehtml

// Link is a navigation link to an anchor in the document, surfaced to
// the caller for display on the terminal. It is never written into the
// document itself.
type Link struct {
	// Text is the anchor's display text.
	Text string
	// Path is the document path the link points at: the absolute file
	// path, or a caller-relative path when a path prefix override is
	// configured on the writer.
	Path string
	// Fragment is the anchor id within the document.
	Fragment string
}

// String renders the link for terminal display: a link glyph, the
// display text, and a file:// URL carrying the anchor fragment.
func (l Link) String() string {
	return "[🔗" + l.Text + "](file://" + l.Path + "#" + l.Fragment + ")"
}
