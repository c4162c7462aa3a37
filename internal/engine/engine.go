// Package engine owns the open document file and the footer-rewrite
// protocol: every mutation truncates the trailing footer region,
// writes new chunk bytes, and rewrites the footer, so the bytes on
// disk form a structurally complete document between any two calls.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
)

// ErrNoFooterMarker is returned when an existing file does not contain
// the footer marker. The engine never attempts to repair such a file.
var ErrNoFooterMarker = errors.New("footer marker not found")

// ErrClosed is returned by mutations on a closed engine.
var ErrClosed = errors.New("document closed")

// ErrLocked is returned when another writer holds the document lock.
var ErrLocked = errors.New("document locked by another writer")

// tailScan bounds the initial backward search for the footer marker on
// reopen. The marker sits at the very end of the file, so this almost
// always succeeds on the first read; the full-file scan is a fallback
// for documents with an unusually large trailing footer.
const tailScan = 32 * 1024

// Engine performs footer rewrites against one open file. It tracks a
// single mutable offset: the insertion point just before the footer
// marker. Everything before that offset is sealed and never touched
// except for the bounded tail region handed to ExtendChunk.
type Engine struct {
	f       *os.File
	lock    *flock.Flock
	footer  []byte
	marker  []byte
	insert  int64 // offset of the footer marker
	created bool
	closed  bool
}

// Open opens the document at path, creating it as an empty valid
// document (header ++ footer) when it does not exist or is empty.
// For an existing non-empty file the footer marker is located and the
// insertion point restored; a missing marker is fatal. The engine
// holds an exclusive lock alongside the file for its whole lifetime:
// a second writer fails here rather than corrupting the document.
func Open(path string, header, footer []byte) (*Engine, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock document: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("open %s: %w", path, ErrLocked)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("open document: %w", err)
	}

	e := &Engine{f: f, lock: lock, footer: footer, marker: markerOf(footer)}
	info, err := f.Stat()
	if err != nil {
		e.release()
		return nil, fmt.Errorf("stat document: %w", err)
	}

	if info.Size() == 0 {
		if _, err := f.Write(header); err != nil {
			e.release()
			return nil, fmt.Errorf("write header: %w", err)
		}
		if _, err := f.Write(footer); err != nil {
			e.release()
			return nil, fmt.Errorf("write footer: %w", err)
		}
		e.insert = int64(len(header))
		e.created = true
		return e, nil
	}

	pos, err := findMarker(f, info.Size(), e.marker)
	if err != nil {
		e.release()
		return nil, err
	}
	e.insert = pos
	return e, nil
}

// markerOf extracts the marker line from the footer bytes: everything
// up to and including the first newline.
func markerOf(footer []byte) []byte {
	if i := bytes.IndexByte(footer, '\n'); i >= 0 {
		return footer[:i]
	}
	return footer
}

// findMarker locates the last occurrence of marker in the file,
// searching a bounded tail first and falling back to a full scan.
func findMarker(f *os.File, size int64, marker []byte) (int64, error) {
	read := size
	if read > tailScan {
		read = tailScan
	}
	tail := make([]byte, read)
	if _, err := f.ReadAt(tail, size-read); err != nil && err != io.EOF {
		return 0, fmt.Errorf("read document tail: %w", err)
	}
	if i := bytes.LastIndex(tail, marker); i >= 0 {
		return size - read + int64(i), nil
	}

	if size > tailScan {
		all := make([]byte, size)
		if _, err := f.ReadAt(all, 0); err != nil && err != io.EOF {
			return 0, fmt.Errorf("read document: %w", err)
		}
		if i := bytes.LastIndex(all, marker); i >= 0 {
			return int64(i), nil
		}
	}
	return 0, ErrNoFooterMarker
}

// Created reports whether Open initialized a fresh document rather
// than reopening an existing one.
func (e *Engine) Created() bool {
	return e.created
}

// InsertionPoint returns the current footer marker offset.
func (e *Engine) InsertionPoint() int64 {
	return e.insert
}

// ReadAll returns the document bytes up to the insertion point. Used
// on reopen to rebuild in-memory state (anchor ids); never on the
// write path.
func (e *Engine) ReadAll() ([]byte, error) {
	if e.closed {
		return nil, ErrClosed
	}
	body := make([]byte, e.insert)
	if _, err := e.f.ReadAt(body, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	return body, nil
}

// AppendChunk inserts content immediately before the footer marker and
// rewrites the footer after it. On return the insertion point sits
// just past the new content.
func (e *Engine) AppendChunk(content []byte) error {
	return e.rewrite(0, content)
}

// ExtendChunk discards the given number of bytes immediately before
// the footer marker (the open chunk's rewritable tail, typically its
// in-progress line plus closing tag) and writes replacement in their
// place, then rewrites the footer.
func (e *Engine) ExtendChunk(discard int64, replacement []byte) error {
	if discard > e.insert {
		return fmt.Errorf("extend chunk: discard %d exceeds body size %d", discard, e.insert)
	}
	return e.rewrite(discard, replacement)
}

// rewrite is the single byte-surgery primitive: truncate the file at
// insert-discard, write content there, and rewrite the footer. Any
// write failure propagates immediately; the engine does not roll back.
func (e *Engine) rewrite(discard int64, content []byte) error {
	if e.closed {
		return ErrClosed
	}
	// The tracked offset must still point at the marker. If it does
	// not, someone else mutated the file; refuse to guess.
	probe := make([]byte, len(e.marker))
	if _, err := e.f.ReadAt(probe, e.insert); err != nil || !bytes.Equal(probe, e.marker) {
		return fmt.Errorf("verify insertion point: %w", ErrNoFooterMarker)
	}
	at := e.insert - discard
	buf := make([]byte, 0, len(content)+len(e.footer))
	buf = append(buf, content...)
	buf = append(buf, e.footer...)
	if _, err := e.f.WriteAt(buf, at); err != nil {
		return fmt.Errorf("rewrite footer region: %w", err)
	}
	if err := e.f.Truncate(at + int64(len(buf))); err != nil {
		return fmt.Errorf("truncate document: %w", err)
	}
	e.insert = at + int64(len(content))
	return nil
}

// Sync flushes the file to stable storage.
func (e *Engine) Sync() error {
	if e.closed {
		return ErrClosed
	}
	return e.f.Sync()
}

// Close flushes and releases the file and its lock. Safe to call more
// than once.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	syncErr := e.f.Sync()
	e.release()
	if syncErr != nil {
		return fmt.Errorf("sync on close: %w", syncErr)
	}
	return nil
}

func (e *Engine) release() {
	e.closed = true
	e.f.Close()
	e.lock.Unlock()
}
