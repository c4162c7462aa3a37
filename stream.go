package teehtml

import (
	"io"

	"github.com/dgallion1/teehtml/internal/term"
)

// maxHold bounds how many bytes a stream adapter will hold back
// waiting for an escape sequence to finish. Past this the bytes are
// not a split sequence, they are garbage; flush them.
const maxHold = 4096

// Stream returns an io.Writer that feeds the given stream kind through
// Print. It is the adapter a caller plugs into stdout/stderr capture;
// the capture wiring itself is the caller's business. An escape
// sequence split across two writes is held back until it completes, so
// interpretation never sees half a sequence.
//
// The returned writer shares the Writer's single-caller discipline: do
// not write to two streams from two goroutines.
func (w *Writer) Stream(kind Kind) io.Writer {
	return &streamWriter{w: w, kind: kind}
}

type streamWriter struct {
	w       *Writer
	kind    Kind
	pending []byte
}

func (s *streamWriter) Write(p []byte) (int, error) {
	text := string(s.pending) + string(p)
	hold := ""
	if i := term.IncompleteTail(text); i >= 0 && len(text)-i < maxHold {
		hold = text[i:]
		text = text[:i]
	}
	if text != "" {
		if err := s.w.Print(text, s.kind); err != nil {
			// Report nothing consumed and keep the held-back bytes, so
			// a retried Write sees the same stream.
			return 0, err
		}
	}
	s.pending = []byte(hold)
	return len(p), nil
}
