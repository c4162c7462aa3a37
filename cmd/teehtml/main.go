// Command teehtml tees standard input to standard output while
// mirroring it into an always-valid HTML log document:
//
//	make 2>&1 | teehtml --name nightly-build
//
// The document on disk is complete and openable at every moment of the
// run; kill -9 mid-build and the log still renders.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dgallion1/teehtml"
	"github.com/dgallion1/teehtml/internal/config"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	name := flag.String("name", cfg.LogName, "log name; the document filename is derived from it")
	dir := flag.String("dir", cfg.LogDir, "directory the document is written into")
	title := flag.String("title", cfg.Title, "document title (defaults to the log name)")
	suffix := flag.String("suffix", cfg.Suffix, `filename suffix; "timestamp" appends _YYYYMMDD_HHMM, "" reuses one file across runs`)
	pathPrefix := flag.String("path-prefix", cfg.PathPrefix, "directory used in printed navigation links instead of the real path")
	out := flag.String("out", "", "exact output path (overrides --name/--dir/--suffix)")
	section := flag.String("section", "", "open this section before streaming")
	flag.Parse()

	opts := []teehtml.Option{teehtml.WithDir(*dir), teehtml.WithPathPrefix(*pathPrefix)}
	if *title != "" {
		opts = append(opts, teehtml.WithTitle(*title))
	}
	if *suffix != "timestamp" {
		opts = append(opts, teehtml.WithSuffix(*suffix))
	}

	var w *teehtml.Writer
	var err error
	if *out != "" {
		w, err = teehtml.OpenFile(*out, opts...)
	} else {
		w, err = teehtml.New(*name, opts...)
	}
	if err != nil {
		log.Error("open log document", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	log.Info("logging", "path", w.Path())

	if *section != "" {
		if err := w.StartSection(*section); err != nil {
			log.Error("start section", "error", err)
			os.Exit(1)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interrupted, err := run(os.Stdin, os.Stdout, w, sigCh)
	if err != nil {
		log.Error("stream input", "error", err)
		w.Close()
		os.Exit(1)
	}
	if err := w.Close(); err != nil {
		log.Error("close log document", "error", err)
		os.Exit(1)
	}
	if interrupted {
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "log written to", w.Path())
}

// run tees src until it is drained or a signal arrives. The writer is
// never touched from the signal goroutine: an interrupt only closes
// src, which unblocks the read loop, and the caller performs the one
// Close on its own goroutine. A signal therefore cannot land in the
// middle of a document rewrite.
func run(src io.ReadCloser, terminal io.Writer, w *teehtml.Writer, sigCh <-chan os.Signal) (interrupted bool, err error) {
	var stopped atomic.Bool
	go func() {
		if _, ok := <-sigCh; !ok {
			return
		}
		stopped.Store(true)
		src.Close()
	}()

	err = tee(src, terminal, w.Stream(teehtml.KindStdout))
	if stopped.Load() {
		// The read error is the interrupt surfacing, not a failure.
		return true, nil
	}
	return false, err
}

// tee copies src to the terminal and the log in chunks small enough to
// keep the document fresh while a slow producer is still running.
func tee(src io.Reader, terminal, logw io.Writer) error {
	reader := bufio.NewReader(src)
	buf := make([]byte, 32*1024)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if _, werr := terminal.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write terminal: %w", werr)
			}
			if _, werr := logw.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write log: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
	}
}
