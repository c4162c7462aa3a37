package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var (
	testHeader = []byte("<html><body>\n")
	testFooter = []byte("<!-- MARK -->\n</body></html>\n")
)

func openTestEngine(t *testing.T, path string) *Engine {
	t.Helper()
	e, err := Open(path, testHeader, testFooter)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return b
}

func TestOpen_NewFileIsEmptyValidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)
	if !e.Created() {
		t.Error("expected Created for a fresh file")
	}

	got := readFile(t, path)
	want := append(append([]byte{}, testHeader...), testFooter...)
	if !bytes.Equal(got, want) {
		t.Fatalf("initial file:\ngot  %q\nwant %q", got, want)
	}
	if e.InsertionPoint() != int64(len(testHeader)) {
		t.Errorf("insertion point: got %d, want %d", e.InsertionPoint(), len(testHeader))
	}
}

func TestAppendChunk_InsertsBeforeFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)

	if err := e.AppendChunk([]byte("<p>one</p>\n")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	if err := e.AppendChunk([]byte("<p>two</p>\n")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}

	got := string(readFile(t, path))
	want := string(testHeader) + "<p>one</p>\n<p>two</p>\n" + string(testFooter)
	if got != want {
		t.Fatalf("document:\ngot  %q\nwant %q", got, want)
	}
}

func TestExtendChunk_RewritesTailRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)

	if err := e.AppendChunk([]byte("<pre>alpha</pre>\n")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	// Reopen the chunk: discard its closing tag, write more content
	// plus a fresh closing tag.
	if err := e.ExtendChunk(int64(len("</pre>\n")), []byte("\nbeta</pre>\n")); err != nil {
		t.Fatalf("ExtendChunk: %v", err)
	}

	got := string(readFile(t, path))
	want := string(testHeader) + "<pre>alpha\nbeta</pre>\n" + string(testFooter)
	if got != want {
		t.Fatalf("document:\ngot  %q\nwant %q", got, want)
	}
}

func TestExtendChunk_DiscardBeyondBodyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)
	if err := e.ExtendChunk(e.InsertionPoint()+1, nil); err == nil {
		t.Fatal("expected error for oversized discard")
	}
}

func TestOpen_ReopenRestoresInsertionPoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)
	if err := e.AppendChunk([]byte("<p>kept</p>\n")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2 := openTestEngine(t, path)
	if e2.Created() {
		t.Error("expected reopen, not creation")
	}
	if err := e2.AppendChunk([]byte("<p>added</p>\n")); err != nil {
		t.Fatalf("AppendChunk after reopen: %v", err)
	}

	got := string(readFile(t, path))
	want := string(testHeader) + "<p>kept</p>\n<p>added</p>\n" + string(testFooter)
	if got != want {
		t.Fatalf("document after reopen:\ngot  %q\nwant %q", got, want)
	}
}

func TestOpen_MissingMarkerFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	if err := os.WriteFile(path, []byte("<html><body>truncated"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(path, testHeader, testFooter)
	if !errors.Is(err, ErrNoFooterMarker) {
		t.Fatalf("expected ErrNoFooterMarker, got %v", err)
	}
}

func TestOpen_SecondWriterIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	openTestEngine(t, path)
	_, err := Open(path, testHeader, testFooter)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestAppendChunk_ExternalTruncationFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)
	if err := e.AppendChunk([]byte("<p>a</p>\n")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	// Truncate behind the engine's back; the marker is gone.
	if err := os.Truncate(path, 4); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if err := e.AppendChunk([]byte("<p>b</p>\n")); !errors.Is(err, ErrNoFooterMarker) {
		t.Fatalf("expected ErrNoFooterMarker, got %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)
	if err := e.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := e.AppendChunk([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("append after close: expected ErrClosed, got %v", err)
	}
}

func TestReadAll_ReturnsBodyOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.html")
	e := openTestEngine(t, path)
	if err := e.AppendChunk([]byte("<p>a</p>\n")); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}
	body, err := e.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := string(testHeader) + "<p>a</p>\n"
	if string(body) != want {
		t.Fatalf("body:\ngot  %q\nwant %q", body, want)
	}
}
