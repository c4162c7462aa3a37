package term

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Attr is a bitset of active text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrStrike
)

type colorKind uint8

const (
	colorNone colorKind = iota
	colorIndexed
	colorRGB
)

// Color is a foreground or background color: unset, a 256-palette
// index, or a direct RGB triple.
type Color struct {
	kind    colorKind
	index   uint8
	r, g, b uint8
}

// Indexed returns a palette color.
func Indexed(i uint8) Color {
	return Color{kind: colorIndexed, index: i}
}

// RGB returns a direct color.
func RGB(r, g, b uint8) Color {
	return Color{kind: colorRGB, r: r, g: g, b: b}
}

// Style is one set of active text attributes. The zero value is
// unstyled terminal text.
type Style struct {
	Attrs Attr
	FG    Color
	BG    Color
}

// zero reports whether the style needs no markup at all.
func (s Style) zero() bool {
	return s == Style{}
}

// Document default colors; must match the template stylesheet. Used
// when rendering inverse video against unset colors.
const (
	defaultFG = "#e6e6e6"
	defaultBG = "#0b0e14"
)

// standardPalette holds the 16 base colors. The low eight match the
// classic VGA palette; the high eight are their bright variants.
var standardPalette = [16]string{
	"#000000", "#aa0000", "#00aa00", "#aa5500",
	"#0000aa", "#aa00aa", "#00aaaa", "#aaaaaa",
	"#555555", "#ff5555", "#55ff55", "#ffff55",
	"#5555ff", "#ff55ff", "#55ffff", "#ffffff",
}

// cubeLevels are the channel values of the xterm 6x6x6 color cube.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// hex resolves a color to a CSS hex value, or "" when unset.
func (c Color) hex() string {
	switch c.kind {
	case colorIndexed:
		i := c.index
		if i < 16 {
			return standardPalette[i]
		}
		if i < 232 {
			i -= 16
			r := cubeLevels[i/36]
			g := cubeLevels[(i/6)%6]
			b := cubeLevels[i%6]
			return fmt.Sprintf("#%02x%02x%02x", r, g, b)
		}
		v := 8 + 10*(i-232)
		return fmt.Sprintf("#%02x%02x%02x", v, v, v)
	case colorRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
	}
	return ""
}

// css returns the inline style declarations for s, without the
// surrounding span. Inverse video is resolved here by swapping the
// effective foreground and background, substituting the document
// defaults for unset colors.
func (s Style) css() string {
	var parts []string
	if s.Attrs&AttrBold != 0 {
		parts = append(parts, "font-weight:700")
	}
	if s.Attrs&AttrDim != 0 {
		parts = append(parts, "opacity:0.7")
	}
	if s.Attrs&AttrItalic != 0 {
		parts = append(parts, "font-style:italic")
	}

	var deco []string
	if s.Attrs&AttrUnderline != 0 {
		deco = append(deco, "underline")
	}
	if s.Attrs&AttrStrike != 0 {
		deco = append(deco, "line-through")
	}
	if s.Attrs&AttrBlink != 0 {
		// Browsers dropped blink long ago; the declaration is kept so
		// the attribute survives into the markup.
		deco = append(deco, "blink")
	}
	if len(deco) > 0 {
		parts = append(parts, "text-decoration:"+strings.Join(deco, " "))
	}

	fg, bg := s.FG.hex(), s.BG.hex()
	if s.Attrs&AttrInverse != 0 {
		if fg == "" {
			fg = defaultFG
		}
		if bg == "" {
			bg = defaultBG
		}
		fg, bg = bg, fg
	}
	if fg != "" {
		parts = append(parts, "color:"+fg)
	}
	if bg != "" {
		parts = append(parts, "background:"+bg)
	}
	return strings.Join(parts, ";")
}

// renderCells flattens a cell line into markup: maximal runs of
// identically-styled text become one span each, unstyled text is
// emitted bare. Text is escaped; trailing pad cells are kept as-is
// (they are plain spaces).
func renderCells(cells []cell) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j].style == cells[i].style {
			j++
		}
		var run strings.Builder
		for _, c := range cells[i:j] {
			run.WriteString(c.text)
		}
		text := html.EscapeString(run.String())
		if cells[i].style.zero() {
			b.WriteString(text)
		} else {
			b.WriteString(`<span style="`)
			b.WriteString(cells[i].style.css())
			b.WriteString(`">`)
			b.WriteString(text)
			b.WriteString("</span>")
		}
		i = j
	}
	return b.String()
}
