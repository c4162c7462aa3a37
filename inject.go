package teehtml

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/yuin/goldmark"

	"github.com/dgallion1/teehtml/internal/htmldoc"
)

// InjectHTML appends pre-rendered markup as an injected-content chunk.
// When anchorText is non-empty an anchor heading is written first, so
// the content is reachable from the table of contents; the returned
// link points at it. Injected content never merges with stream output
// in either direction.
//
// The markup is trusted: it is the producer's job to escape whatever
// untrusted text it embeds.
func (w *Writer) InjectHTML(markup, anchorText string) (Link, error) {
	var link Link
	if anchorText != "" {
		var err error
		link, err = w.Anchor(anchorText)
		if err != nil {
			return Link{}, err
		}
	}
	w.seal()
	if err := w.eng.AppendChunk([]byte(htmldoc.Inject(markup))); err != nil {
		return Link{}, err
	}
	return link, nil
}

// InjectMarkdown renders a Markdown fragment and appends it as
// injected content.
func (w *Writer) InjectMarkdown(src, anchorText string) (Link, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return Link{}, fmt.Errorf("render markdown: %w", err)
	}
	return w.InjectHTML(buf.String(), anchorText)
}

// InjectJSON marshals v, pretty-prints it, and appends it as a
// preformatted injected chunk. With lineNumbers each line is prefixed
// with its number, the way the original log is usually discussed in
// review.
func (w *Writer) InjectJSON(v any, anchorText string, lineNumbers bool) (Link, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Link{}, fmt.Errorf("marshal json: %w", err)
	}
	text := strings.TrimRight(string(pretty.Pretty(raw)), "\n")

	if lineNumbers {
		lines := strings.Split(text, "\n")
		var b strings.Builder
		for i, line := range lines {
			fmt.Fprintf(&b, "%4d: %s", i+1, line)
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
		text = b.String()
	}
	return w.InjectHTML("<pre>"+htmldoc.Escape(text)+"</pre>", anchorText)
}

// InjectTable appends a simple table. Cells are escaped here; rows
// shorter than the header are padded with empty cells.
func (w *Writer) InjectTable(headers []string, rows [][]string, anchorText string) (Link, error) {
	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, h := range headers {
		b.WriteString("<th>")
		b.WriteString(htmldoc.Escape(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for i := range headers {
			b.WriteString("<td>")
			if i < len(row) {
				b.WriteString(htmldoc.Escape(row[i]))
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return w.InjectHTML(b.String(), anchorText)
}

// InjectImage encodes img as PNG and appends it inline as a data URI.
func (w *Writer) InjectImage(img image.Image, anchorText string) (Link, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Link{}, fmt.Errorf("encode png: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())
	markup := `<img src="data:image/png;base64,` + b64 + `" alt="` + htmldoc.Escape(anchorText) + `">`
	return w.InjectHTML(markup, anchorText)
}
