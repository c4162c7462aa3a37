// Package teehtml is an incremental HTML log writer. It mirrors
// terminal output into a single on-disk HTML document that is
// structurally complete after every write, without ever holding the
// log in memory: each append rewrites only a small trailing footer
// region of the file.
//
// A Writer owns its document file for its whole lifetime. Terminal
// output goes in through Print (or the io.Writer adapters from
// Stream); sections, anchors and pre-rendered content go in through
// StartSection, Anchor and the Inject functions. Concurrent writers,
// whether goroutines or processes, are not supported: the document
// lock exists to fail fast, not to serialize.
package teehtml

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gosimple/slug"

	"github.com/dgallion1/teehtml/internal/anchor"
	"github.com/dgallion1/teehtml/internal/engine"
	"github.com/dgallion1/teehtml/internal/htmldoc"
	"github.com/dgallion1/teehtml/internal/merge"
	"github.com/dgallion1/teehtml/internal/term"
)

// ErrNotStream is returned by Print for kinds that are not terminal
// streams. Sections, anchors and injected content have their own entry
// points.
var ErrNotStream = fmt.Errorf("kind is not a terminal stream")

// Writer writes one HTML log document.
type Writer struct {
	eng     *engine.Engine
	anchors *anchor.Registry
	merge   merge.State

	// Interpreter state for the open mergeable chunk, plus the byte
	// lengths of its rewritable tail: the rendered in-progress line
	// and the chunk's closing tag. Together they tell the engine how
	// far back the next extension may reach.
	line      term.LineState
	tailLen   int
	closerLen int

	path       string
	pathPrefix string
	section    string
	now        func() time.Time
}

type options struct {
	title      string
	dir        string
	suffix     *string
	pathPrefix string
	now        func() time.Time
}

// Option configures a Writer.
type Option func(*options)

// WithTitle sets the document title; defaults to the log name.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithDir sets the directory the document is created in.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithSuffix overrides the filename suffix appended to the log name.
// The default is a _YYYYMMDD_HHMM timestamp; an empty suffix produces
// a bare <name>.html, which is how a process reopens the same document
// across runs.
func WithSuffix(suffix string) Option {
	return func(o *options) { o.suffix = &suffix }
}

// WithPathPrefix overrides the directory used in navigation links
// returned to the caller, for setups where the path the writer sees is
// not the path the reader should click.
func WithPathPrefix(prefix string) Option {
	return func(o *options) { o.pathPrefix = prefix }
}

// WithClock injects the time source. Tests use this; everything else
// should not.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates (or reopens) a log document named after logName: the
// slugified name plus the suffix, in the configured directory.
func New(logName string, opts ...Option) (*Writer, error) {
	o := gather(opts)
	name := slug.Make(logName)
	if name == "" {
		name = "log"
	}
	suffix := o.now().Format("_20060102_1504")
	if o.suffix != nil {
		suffix = *o.suffix
	}
	if o.title == "" {
		o.title = logName
	}
	path := filepath.Join(o.dir, name+suffix+".html")
	return open(path, o)
}

// OpenFile creates or reopens a log document at an exact path.
func OpenFile(path string, opts ...Option) (*Writer, error) {
	o := gather(opts)
	if o.title == "" {
		o.title = filepath.Base(path)
	}
	return open(path, o)
}

func gather(opts []Option) *options {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// idAttr matches id attributes in already-written headings; used to
// reload the anchor registry when reopening an existing document.
var idAttr = regexp.MustCompile(`<h[12] id="([^"]+)"`)

func open(path string, o *options) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	eng, err := engine.Open(path, htmldoc.Header(o.title), htmldoc.Footer())
	if err != nil {
		return nil, err
	}

	w := &Writer{
		eng:        eng,
		anchors:    anchor.NewRegistry(o.now),
		path:       path,
		pathPrefix: o.pathPrefix,
		now:        o.now,
	}

	if !eng.Created() {
		// Reopening: ids already on disk must stay unique, so seed the
		// registry from the existing body.
		body, err := eng.ReadAll()
		if err != nil {
			eng.Close()
			return nil, fmt.Errorf("reload anchors: %w", err)
		}
		for _, m := range idAttr.FindAllSubmatch(body, -1) {
			w.anchors.Seed(string(m[1]))
		}
	}
	return w, nil
}

// Path returns the document's file path.
func (w *Writer) Path() string {
	return w.path
}

// Print appends terminal output of the given stream kind (KindStdout
// or KindStderr). The text is interpreted: SGR styling becomes styled
// markup, carriage returns and backspaces edit the in-progress line,
// and output that repositions the cursor beyond the current line is
// grouped into a collapsed cursor-movement block. Consecutive writes
// of the same kind extend one on-disk chunk.
func (w *Writer) Print(text string, kind Kind) error {
	if kind != KindStdout && kind != KindStderr {
		return fmt.Errorf("print %v: %w", kind, ErrNotStream)
	}
	if text == "" {
		return nil
	}

	if term.Classify(text) == term.ClassCursor {
		return w.printCursorGroup(text)
	}
	return w.printRuns(text, kind)
}

func (w *Writer) printRuns(text string, kind Kind) error {
	decision := w.merge.Record(kind.class(), kind.mergeable())

	st := w.line
	if decision == merge.New {
		st = term.LineState{}
	}
	res, st := term.Interpret(text, st)
	tail := st.HTML()

	var err error
	switch decision {
	case merge.New:
		chunk := htmldoc.StreamOpen(kind.class()) + res.Committed + tail + htmldoc.StreamCloser
		err = w.eng.AppendChunk([]byte(chunk))
	case merge.Extend:
		discard := int64(w.tailLen + w.closerLen)
		replacement := res.Committed + tail + htmldoc.StreamCloser
		err = w.eng.ExtendChunk(discard, []byte(replacement))
	}
	if err != nil {
		w.merge.Reset()
		return err
	}

	w.line = st
	w.tailLen = len(tail)
	w.closerLen = len(htmldoc.StreamCloser)
	return nil
}

func (w *Writer) printCursorGroup(text string) error {
	decision := w.merge.Record(KindCursor.class(), KindCursor.mergeable())
	block := htmldoc.Details(term.Preview(text, 20), term.Plain(text))

	var err error
	switch decision {
	case merge.New:
		chunk := htmldoc.GroupOpen() + "\n" + block + htmldoc.GroupCloser
		err = w.eng.AppendChunk([]byte(chunk))
	case merge.Extend:
		err = w.eng.ExtendChunk(int64(w.closerLen), []byte(block+htmldoc.GroupCloser))
	}
	if err != nil {
		w.merge.Reset()
		return err
	}

	w.line = term.LineState{}
	w.tailLen = 0
	w.closerLen = len(htmldoc.GroupCloser)
	return nil
}

// StartSection writes a section heading. The section becomes the
// enclosing section for subsequent anchors, and any open stream chunk
// is sealed: later output starts a fresh chunk.
func (w *Writer) StartSection(name string) error {
	w.seal()
	id := w.anchors.Register(name, "")
	if err := w.eng.AppendChunk([]byte(htmldoc.Section(id, name))); err != nil {
		return err
	}
	w.section = id
	return nil
}

// Anchor writes a navigation-anchor heading and returns the link the
// caller can surface on the terminal. The anchor id is derived from
// the display text; collisions get a deterministic suffix.
func (w *Writer) Anchor(text string) (Link, error) {
	return w.NamedAnchor(text, "")
}

// NamedAnchor is Anchor with an explicit requested id.
func (w *Writer) NamedAnchor(text, requestedID string) (Link, error) {
	w.seal()
	id := w.anchors.Register(text, requestedID)
	sectionID := w.section
	if sectionID == "" {
		sectionID = id
	}
	if err := w.eng.AppendChunk([]byte(htmldoc.AnchorHeading(id, sectionID, text))); err != nil {
		return Link{}, err
	}
	return w.link(text, id), nil
}

// Resolve reports whether an anchor id exists in this document.
func (w *Writer) Resolve(id string) bool {
	_, ok := w.anchors.Lookup(id)
	return ok
}

func (w *Writer) link(text, id string) Link {
	path := w.path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if w.pathPrefix != "" {
		path = filepath.Join(w.pathPrefix, filepath.Base(w.path))
	}
	return Link{Text: text, Path: path, Fragment: id}
}

// seal closes the open mergeable chunk, if any: the merge machine goes
// idle and the tail bookkeeping is dropped, so nothing can extend into
// content written after this point.
func (w *Writer) seal() {
	w.merge.Reset()
	w.line = term.LineState{}
	w.tailLen = 0
	w.closerLen = 0
}

// Sync flushes the document to stable storage.
func (w *Writer) Sync() error {
	return w.eng.Sync()
}

// Close flushes and closes the document. The file is a complete valid
// document before, during and after; Close releases the writer's
// ownership of it. Safe to call more than once.
func (w *Writer) Close() error {
	w.seal()
	return w.eng.Close()
}
