// Package term turns raw terminal output (text interleaved with ANSI
// control sequences) into styled HTML, or classifies it as a
// cursor-movement group when the sequences reposition the cursor
// beyond the current line and cannot be replayed safely into markup.
//
// Sequence tokenization is delegated to charmbracelet/x/ansi; this
// package owns the SGR attribute state, the editable current-line
// buffer (carriage return, backspace, in-line erase), and the
// classification decision.
package term

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Classification tags the outcome of interpreting one write.
type Classification int

const (
	// ClassRuns means the input decoded cleanly into styled text.
	ClassRuns Classification = iota
	// ClassCursor means the input repositions the cursor beyond the
	// current line; the caller should render it as a collapsed group
	// instead of attempting a multi-line rewrite.
	ClassCursor
)

// cell is one logical character (a grapheme cluster) with its style.
type cell struct {
	text  string
	style Style
}

// LineState carries the interpreter state across consecutive writes
// into the same chunk: the in-progress line, the cursor column within
// it, and the active SGR attributes. The zero value is an empty line
// with no attributes.
type LineState struct {
	cells []cell
	col   int
	style Style
}

// HTML renders the in-progress line. The caller rewrites this tail
// region of the open chunk on every extension, which is what lets a
// later carriage return overwrite it without touching sealed markup.
func (st LineState) HTML() string {
	return renderCells(st.cells)
}

// Empty reports whether the current line holds no text.
func (st LineState) Empty() bool {
	return len(st.cells) == 0
}

// Result is the outcome of one Interpret call.
type Result struct {
	// Committed is the markup of lines completed during this call,
	// each terminated by a newline. It never changes once written.
	Committed string
}

// CSI final bytes the interpreter can apply to the current line.
// Anything not listed here and not in csiIgnored reclassifies the
// whole write as cursor movement.
func csiApplies(final byte) bool {
	switch final {
	case 'm', 'K', 'G', 'C', 'D':
		return true
	}
	return false
}

// CSI finals that are safe to drop: mode set/reset (cursor visibility,
// bracketed paste, alternate screen requests) and status queries.
func csiIgnored(final byte) bool {
	switch final {
	case 'h', 'l', 'n', 't':
		return true
	}
	return false
}

// Classify scans input and reports whether it can be interpreted as
// styled runs or must be grouped as cursor movement. It never fails:
// unrecognized sequences degrade to ClassCursor, not errors.
func Classify(input string) Classification {
	var state byte
	for len(input) > 0 {
		seq, width, n, newState := ansi.DecodeSequence(input, state, nil)
		state = newState
		input = input[n:]
		if width > 0 {
			continue
		}
		if !sequenceSafe(seq) {
			return ClassCursor
		}
	}
	return ClassRuns
}

// sequenceSafe reports whether one decoded control token is confined
// to the current line.
func sequenceSafe(seq string) bool {
	if len(seq) == 0 {
		return true
	}
	if seq[0] != 0x1b {
		// C0 control. CR, BS, TAB and LF edit the current line (or
		// commit it); the rest are dropped harmlessly.
		return true
	}
	if len(seq) >= 2 && seq[1] == '[' {
		final := seq[len(seq)-1]
		return csiApplies(final) || csiIgnored(final)
	}
	if len(seq) >= 2 {
		switch seq[1] {
		case ']', 'P', 'X', '^', '_':
			// OSC / DCS / SOS / PM / APC: string sequences carry no
			// visible text; dropping them is safe. Font and window
			// requests that cannot map to a style fall out here too.
			return true
		case 'M', 'D', 'E', '7', '8':
			// Reverse index, index, next line, save/restore cursor:
			// all move the cursor off the current line.
			return false
		}
	}
	return true
}

// Interpret decodes input under st and returns the newly committed
// markup plus the residual line state. The caller must have classified
// the input as ClassRuns; cursor-movement sequences that slip through
// are dropped rather than misrendered.
func Interpret(input string, st LineState) (Result, LineState) {
	var committed strings.Builder
	var state byte

	for len(input) > 0 {
		seq, width, n, newState := ansi.DecodeSequence(input, state, nil)
		state = newState
		input = input[n:]

		if width > 0 {
			st.put(seq)
			continue
		}

		if len(seq) == 1 {
			switch seq[0] {
			case '\n':
				committed.WriteString(renderCells(st.cells))
				committed.WriteByte('\n')
				st.cells = st.cells[:0]
				st.col = 0
			case '\r':
				st.col = 0
			case '\b':
				// Removes the last logical character; never crosses a
				// line boundary.
				if len(st.cells) > 0 {
					st.cells = st.cells[:len(st.cells)-1]
					if st.col > len(st.cells) {
						st.col = len(st.cells)
					}
				}
			case '\t':
				st.put("\t")
			}
			continue
		}

		if len(seq) >= 2 && seq[0] == 0x1b && seq[1] == '[' {
			st.applyCSI(seq)
		}
		// Remaining escape and string sequences carry no content.
	}

	return Result{Committed: committed.String()}, st
}

// put writes one grapheme at the cursor, overwriting an existing cell
// when the cursor was rewound, padding with spaces when it was moved
// right past the end of the line.
func (st *LineState) put(grapheme string) {
	for st.col > len(st.cells) {
		st.cells = append(st.cells, cell{text: " "})
	}
	c := cell{text: grapheme, style: st.style}
	if st.col < len(st.cells) {
		st.cells[st.col] = c
	} else {
		st.cells = append(st.cells, c)
	}
	st.col++
}

// applyCSI applies one CSI sequence to the line state. Sequences whose
// final byte is not in the apply set are dropped.
func (st *LineState) applyCSI(seq string) {
	body := seq[2 : len(seq)-1]
	final := seq[len(seq)-1]
	if strings.ContainsAny(body, "?<=>") {
		// Private-parameter sequences (cursor visibility and friends)
		// never edit line content.
		return
	}
	switch final {
	case 'm':
		st.style = applySGR(st.style, body)
	case 'K':
		st.eraseInLine(firstParam(body, 0))
	case 'G':
		col := firstParam(body, 1) - 1
		if col < 0 {
			col = 0
		}
		st.col = col
	case 'C':
		st.col += firstParam(body, 1)
	case 'D':
		st.col -= firstParam(body, 1)
		if st.col < 0 {
			st.col = 0
		}
	}
}

// eraseInLine implements CSI K for the current line buffer.
func (st *LineState) eraseInLine(mode int) {
	switch mode {
	case 0: // cursor to end of line
		if st.col < len(st.cells) {
			st.cells = st.cells[:st.col]
		}
	case 1: // start of line to cursor
		for i := 0; i < st.col && i < len(st.cells); i++ {
			st.cells[i] = cell{text: " "}
		}
	case 2: // whole line
		st.cells = st.cells[:0]
		st.col = 0
	}
}

// firstParam parses the first numeric parameter of a CSI body,
// defaulting when empty or malformed.
func firstParam(body string, def int) int {
	if i := strings.IndexByte(body, ';'); i >= 0 {
		body = body[:i]
	}
	if body == "" {
		return def
	}
	n, err := strconv.Atoi(body)
	if err != nil {
		return def
	}
	return n
}

// applySGR folds one SGR parameter list into a style. Unknown
// parameters are ignored; the parse never fails.
func applySGR(s Style, body string) Style {
	params := strings.Split(body, ";")
	for i := 0; i < len(params); i++ {
		p := params[i]
		// Sub-parameters (4:3 underline styles) collapse to the base
		// parameter.
		if j := strings.IndexByte(p, ':'); j >= 0 {
			p = p[:j]
		}
		code := 0
		if p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				continue
			}
			code = n
		}

		switch {
		case code == 0:
			s = Style{}
		case code == 1:
			s.Attrs |= AttrBold
		case code == 2:
			s.Attrs |= AttrDim
		case code == 3:
			s.Attrs |= AttrItalic
		case code == 4:
			s.Attrs |= AttrUnderline
		case code == 5 || code == 6:
			s.Attrs |= AttrBlink
		case code == 7:
			s.Attrs |= AttrInverse
		case code == 9:
			s.Attrs |= AttrStrike
		case code == 22:
			s.Attrs &^= AttrBold | AttrDim
		case code == 23:
			s.Attrs &^= AttrItalic
		case code == 24:
			s.Attrs &^= AttrUnderline
		case code == 25:
			s.Attrs &^= AttrBlink
		case code == 27:
			s.Attrs &^= AttrInverse
		case code == 29:
			s.Attrs &^= AttrStrike
		case code >= 30 && code <= 37:
			s.FG = Indexed(uint8(code - 30))
		case code == 38:
			var c Color
			c, i = extendedColor(params, i)
			if c.kind != colorNone {
				s.FG = c
			}
		case code == 39:
			s.FG = Color{}
		case code >= 40 && code <= 47:
			s.BG = Indexed(uint8(code - 40))
		case code == 48:
			var c Color
			c, i = extendedColor(params, i)
			if c.kind != colorNone {
				s.BG = c
			}
		case code == 49:
			s.BG = Color{}
		case code >= 90 && code <= 97:
			s.FG = Indexed(uint8(code - 90 + 8))
		case code >= 100 && code <= 107:
			s.BG = Indexed(uint8(code - 100 + 8))
		}
	}
	return s
}

// extendedColor parses the 38/48 extended color forms (5;n and
// 2;r;g;b) starting after params[i]. It returns the parsed color (or
// the zero Color when malformed) and the index of the last consumed
// parameter.
func extendedColor(params []string, i int) (Color, int) {
	next := func(j int) (int, bool) {
		if j >= len(params) {
			return 0, false
		}
		n, err := strconv.Atoi(params[j])
		if err != nil || n < 0 || n > 255 {
			return 0, false
		}
		return n, true
	}

	mode, ok := next(i + 1)
	if !ok {
		return Color{}, i
	}
	switch mode {
	case 5:
		n, ok := next(i + 2)
		if !ok {
			return Color{}, i + 1
		}
		return Indexed(uint8(n)), i + 2
	case 2:
		r, ok1 := next(i + 2)
		g, ok2 := next(i + 3)
		b, ok3 := next(i + 4)
		if !ok1 || !ok2 || !ok3 {
			return Color{}, i + 1
		}
		return RGB(uint8(r), uint8(g), uint8(b)), i + 4
	}
	return Color{}, i + 1
}

// Plain strips all control sequences and control bytes from raw
// terminal output, keeping newlines and tabs. Used for the body of a
// cursor-movement group's collapsed block.
func Plain(raw string) string {
	stripped := ansi.Strip(raw)
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Preview returns the summary line for a collapsed block: the first
// max characters of the stripped text with newlines flattened to
// spaces, followed by an ellipsis when truncated.
func Preview(raw string, max int) string {
	plain := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		return r
	}, Plain(raw))

	runes := []rune(plain)
	if len(runes) <= max {
		return plain
	}
	return string(runes[:max]) + "…"
}
