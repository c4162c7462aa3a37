// Package htmldoc builds the pieces of the on-disk HTML document: the
// static header (styling plus the table-of-contents script), the footer
// that keeps the file well-formed between appends, and the markup
// wrappers for each chunk kind.
package htmldoc

import (
	_ "embed"
	"strings"

	"golang.org/x/net/html"
)

// FooterMarker is the unique byte sequence that separates the document
// body from the rewritable footer region. It never occurs anywhere else
// in the document: all caller-supplied text is escaped before it is
// written, so the literal cannot be smuggled in through log output.
const FooterMarker = "<!-- TEEHTML:FOOTER -->"

// StreamCloser closes a terminal-output chunk.
const StreamCloser = "</pre></div>\n"

// GroupCloser closes a cursor-movement group chunk.
const GroupCloser = "</div>\n"

//go:embed template.html
var headerTemplate string

// Header returns the static document preamble up to and including the
// opening <main> tag.
func Header(title string) []byte {
	return []byte(strings.ReplaceAll(headerTemplate, "{{title}}", Escape(title)))
}

// Footer returns the full footer region: the marker followed by the
// closing tags that complete the document.
func Footer() []byte {
	return []byte(FooterMarker + "\n</main>\n</body>\n</html>\n")
}

// Escape neutralizes text for inclusion in markup, both element content
// and attribute values.
func Escape(s string) string {
	return html.EscapeString(s)
}

// StreamOpen returns the opening markup of a terminal-output chunk for
// the given CSS class (stdout or stderr).
func StreamOpen(class string) string {
	return `<div class="` + class + `"><pre>`
}

// GroupOpen returns the opening markup of a cursor-movement group.
func GroupOpen() string {
	return `<div class="ansi-cursor">`
}

// Details returns a collapsed, togglable block with the given summary
// line and preformatted body. Both are escaped here.
func Details(summary, body string) string {
	var b strings.Builder
	b.WriteString("<details><summary>")
	b.WriteString(Escape(summary))
	b.WriteString("</summary><pre>")
	b.WriteString(Escape(body))
	b.WriteString("</pre></details>\n")
	return b.String()
}

// Section returns a section heading chunk.
func Section(id, text string) string {
	return `<h1 id="` + Escape(id) + `">` + Escape(text) + "</h1>\n"
}

// AnchorHeading returns a navigation-anchor heading chunk. The
// data-section attribute ties the anchor to its enclosing section for
// the table-of-contents script.
func AnchorHeading(id, sectionID, text string) string {
	return `<h2 id="` + Escape(id) + `" data-section="` + Escape(sectionID) + `">` +
		Escape(text) + "</h2>\n"
}

// Inject wraps pre-rendered markup in an injected-content container.
// The markup is the producer's responsibility; it is not escaped here.
func Inject(markup string) string {
	if !strings.HasSuffix(markup, "\n") {
		markup += "\n"
	}
	return `<div class="inject">` + "\n" + markup + "</div>\n"
}
