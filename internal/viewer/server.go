// Package viewer serves produced log documents over HTTP for teams
// that keep logs on a shared host rather than clicking file:// links.
// It is a read-only browser: the writer owns the files, the viewer
// only streams them out.
package viewer

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/teehtml/internal/htmldoc"
)

// Server is the HTTP log browser.
type Server struct {
	router chi.Router
	dir    string
	log    *slog.Logger
}

// NewServer configures a browser over the given log directory. apiKey
// may be empty, in which case the listing is open.
func NewServer(dir, apiKey string, log *slog.Logger) *Server {
	s := &Server{dir: dir, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(AuthMiddleware(apiKey, log))
		}
		r.Get("/", s.handleIndex)
		r.Get("/logs/{name}", s.handleLog)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleIndex lists the .html documents in the log directory, newest
// first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Error("list log directory", "dir", s.dir, "error", err)
		http.Error(w, "cannot read log directory", http.StatusInternalServerError)
		return
	}

	type doc struct {
		name    string
		modTime int64
	}
	var docs []doc
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		docs = append(docs, doc{name: e.Name(), modTime: info.ModTime().UnixNano()})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].modTime > docs[j].modTime })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!DOCTYPE html><html><head><title>logs</title></head><body><h1>Logs</h1><ul>")
	for _, d := range docs {
		// The href needs URL escaping, the link text HTML escaping;
		// they differ as soon as a filename carries a space or '#'.
		href := htmldoc.Escape(url.PathEscape(d.name))
		fmt.Fprintf(w, `<li><a href="/logs/%s">%s</a></li>`, href, htmldoc.Escape(d.name))
	}
	fmt.Fprint(w, "</ul></body></html>")
}

// handleLog streams one document. Names are constrained to the log
// directory; anything resembling a path is rejected.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "invalid log name", http.StatusBadRequest)
		return
	}
	if !strings.HasSuffix(name, ".html") {
		http.Error(w, "not a log document", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}
