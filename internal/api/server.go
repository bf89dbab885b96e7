// Package api is the HTTP surface: the editor shell, read-only document
// exports, index lookups, search, and the websocket endpoint.
package api

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spiritlab/spirit/internal/index"
	"github.com/spiritlab/spirit/internal/store"
)

// Server routes HTTP traffic. Everything here is read-only; edits flow
// through the websocket endpoint.
type Server struct {
	router chi.Router
	st     *store.Store
	idx    *index.Holder
	ws     http.Handler
	shell  string
	macros map[string]string
	log    *slog.Logger
}

// NewServer wires the routes. shell is the directory holding the editor
// front-end; ws handles websocket upgrades.
func NewServer(st *store.Store, idx *index.Holder, ws http.Handler, shell string, macros map[string]string, log *slog.Logger) *Server {
	s := &Server{
		st:     st,
		idx:    idx,
		ws:     ws,
		shell:  shell,
		macros: macros,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleShell)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(filepath.Join(s.shell, "static")))))

	r.Get("/md/{doc}", s.handleMarkdown)
	r.Get("/html/{doc}", s.handleHTML)
	r.Get("/latex/{doc}", s.handleLatex)
	r.Get("/img/{img}", s.handleImage)
	r.Get("/ref/{ref}", s.handleRef)
	r.Get("/pop/{pop}", s.handlePop)
	r.Get("/cit/{cit}", s.handleCit)
	r.Get("/search/{query}", s.handleSearch)

	r.Handle("/ws", s.ws)

	// bare document names open the editor on that document
	r.Get("/{doc}", s.handleRedirect)

	s.router = r
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.shell, "index.html"))
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	http.Redirect(w, r, "/?doc="+doc, http.StatusFound)
}
