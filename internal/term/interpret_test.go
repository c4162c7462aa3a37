package term

import (
	"strings"
	"testing"
)

func interpretAll(t *testing.T, input string) (string, LineState) {
	t.Helper()
	if Classify(input) != ClassRuns {
		t.Fatalf("input %q unexpectedly classified as cursor movement", input)
	}
	res, st := Interpret(input, LineState{})
	return res.Committed, st
}

func TestInterpret_PlainTextStaysOnCurrentLine(t *testing.T) {
	committed, st := interpretAll(t, "hello")
	if committed != "" {
		t.Errorf("expected nothing committed, got %q", committed)
	}
	if st.HTML() != "hello" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "hello")
	}
}

func TestInterpret_NewlineCommitsLine(t *testing.T) {
	committed, st := interpretAll(t, "one\ntwo")
	if committed != "one\n" {
		t.Errorf("committed: got %q, want %q", committed, "one\n")
	}
	if st.HTML() != "two" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "two")
	}
}

func TestInterpret_CarriageReturnOverwritesLine(t *testing.T) {
	res1, st := Interpret("progress: 1", LineState{})
	res2, st := Interpret("\rprogress: 2", st)
	if res1.Committed != "" || res2.Committed != "" {
		t.Errorf("expected no committed lines, got %q and %q", res1.Committed, res2.Committed)
	}
	if st.HTML() != "progress: 2" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "progress: 2")
	}
}

func TestInterpret_CarriageReturnPartialOverwrite(t *testing.T) {
	_, st := interpretAll(t, "abcdef\rXY")
	if st.HTML() != "XYcdef" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "XYcdef")
	}
}

func TestInterpret_BackspaceRemovesLastCharacter(t *testing.T) {
	_, st := interpretAll(t, "abc\b")
	if st.HTML() != "ab" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "ab")
	}
}

func TestInterpret_BackspaceNeverCrossesLineBoundary(t *testing.T) {
	committed, st := interpretAll(t, "kept\n\b\b\bx")
	if committed != "kept\n" {
		t.Errorf("committed: got %q, want %q", committed, "kept\n")
	}
	if st.HTML() != "x" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "x")
	}
}

func TestInterpret_EraseToEndOfLine(t *testing.T) {
	_, st := interpretAll(t, "abcdef\r\x1b[K12")
	if st.HTML() != "12" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "12")
	}
}

func TestInterpret_EraseWholeLine(t *testing.T) {
	_, st := interpretAll(t, "abcdef\x1b[2Kxy")
	if st.HTML() != "xy" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "xy")
	}
}

func TestInterpret_TextIsEscaped(t *testing.T) {
	_, st := interpretAll(t, "a<b>&c")
	got := st.HTML()
	if strings.Contains(got, "<b>") {
		t.Fatalf("unescaped markup in output: %q", got)
	}
	if !strings.Contains(got, "&lt;b&gt;") || !strings.Contains(got, "&amp;c") {
		t.Errorf("expected escaped text, got %q", got)
	}
}

func TestInterpret_BoldAndColorSpans(t *testing.T) {
	committed, _ := interpretAll(t, "\x1b[1;31mred bold\x1b[0m plain\n")
	want := `<span style="font-weight:700;color:#aa0000">red bold</span> plain` + "\n"
	if committed != want {
		t.Errorf("committed:\ngot  %q\nwant %q", committed, want)
	}
}

func TestInterpret_AttributeResetIsPartial(t *testing.T) {
	// 22 clears bold but leaves the color active.
	committed, _ := interpretAll(t, "\x1b[1;32mA\x1b[22mB\n")
	want := `<span style="font-weight:700;color:#00aa00">A</span>` +
		`<span style="color:#00aa00">B</span>` + "\n"
	if committed != want {
		t.Errorf("committed:\ngot  %q\nwant %q", committed, want)
	}
}

func TestInterpret_StylePersistsAcrossCalls(t *testing.T) {
	_, st := Interpret("\x1b[4m", LineState{})
	res, _ := Interpret("under\n", st)
	want := `<span style="text-decoration:underline">under</span>` + "\n"
	if res.Committed != want {
		t.Errorf("committed:\ngot  %q\nwant %q", res.Committed, want)
	}
}

func TestInterpret_BrightAndExtendedColors(t *testing.T) {
	committed, _ := interpretAll(t, "\x1b[91ma\x1b[38;5;196mb\x1b[38;2;1;2;3mc\x1b[39md\n")
	want := `<span style="color:#ff5555">a</span>` +
		`<span style="color:#ff0000">b</span>` +
		`<span style="color:#010203">c</span>d` + "\n"
	if committed != want {
		t.Errorf("committed:\ngot  %q\nwant %q", committed, want)
	}
}

func TestInterpret_InverseSwapsDefaults(t *testing.T) {
	committed, _ := interpretAll(t, "\x1b[7mflip\x1b[27m\n")
	want := `<span style="color:#0b0e14;background:#e6e6e6">flip</span>` + "\n"
	if committed != want {
		t.Errorf("committed:\ngot  %q\nwant %q", committed, want)
	}
}

func TestInterpret_UnknownSGRIgnored(t *testing.T) {
	committed, _ := interpretAll(t, "\x1b[95;999mx\n")
	// 999 is meaningless and skipped; 95 (bright magenta) still applies.
	want := `<span style="color:#ff55ff">x</span>` + "\n"
	if committed != want {
		t.Errorf("committed:\ngot  %q\nwant %q", committed, want)
	}
}

func TestClassify_CursorUpIsMovement(t *testing.T) {
	if Classify("\x1b[2A\x1b[Kdone") != ClassCursor {
		t.Error("cursor-up + erase should classify as cursor movement")
	}
}

func TestClassify_SGROnlyIsRuns(t *testing.T) {
	if Classify("\x1b[1mhi\x1b[0m") != ClassRuns {
		t.Error("pure SGR input should classify as runs")
	}
}

func TestClassify_CarriageReturnIsRuns(t *testing.T) {
	if Classify("50%\r60%\r70%") != ClassRuns {
		t.Error("carriage-return progress output should classify as runs")
	}
}

func TestClassify_PrivateModesAreRuns(t *testing.T) {
	// Hide/show cursor wraps most progress bars; it never edits text.
	if Classify("\x1b[?25lworking\x1b[?25h") != ClassRuns {
		t.Error("cursor visibility toggles should not force a fallback group")
	}
}

func TestClassify_OSCAloneIsRuns(t *testing.T) {
	if Classify("\x1b]0;window title\x07text") != ClassRuns {
		t.Error("OSC title sequence alone should not force a fallback group")
	}
}

func TestClassify_CursorPositionIsMovement(t *testing.T) {
	if Classify("\x1b[10;20Hthere") != ClassCursor {
		t.Error("CUP should classify as cursor movement")
	}
}

func TestInterpret_OSCSequenceDropped(t *testing.T) {
	_, st := interpretAll(t, "\x1b]0;title\x07visible")
	if st.HTML() != "visible" {
		t.Errorf("current line: got %q, want %q", st.HTML(), "visible")
	}
}

func TestPlain_StripsControlsKeepsNewlines(t *testing.T) {
	got := Plain("\x1b[2A\x1b[1mup\x1b[0m\nnext\rline")
	if got != "up\nnextline" {
		t.Errorf("Plain: got %q", got)
	}
}

func TestPreview_TruncatesWithoutNewlines(t *testing.T) {
	raw := "\x1b[2Aline one goes on and on\nline two"
	got := Preview(raw, 20)
	if strings.ContainsAny(got, "\n\r") {
		t.Fatalf("preview contains newline: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) != 21 {
		t.Errorf("expected 20 characters plus ellipsis, got %d: %q", len([]rune(got)), got)
	}
}

func TestPreview_ShortInputHasNoEllipsis(t *testing.T) {
	if got := Preview("\x1b[3Dok", 20); got != "ok" {
		t.Errorf("Preview: got %q, want %q", got, "ok")
	}
}
