package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spiritlab/spirit/internal/export"
)

// docFile maps a URL document id to its store filename; bare ids get the
// markdown extension.
func docFile(doc string) string {
	if filepath.Ext(doc) == "" {
		return doc + ".md"
	}
	return doc
}

func (s *Server) loadDoc(w http.ResponseWriter, r *http.Request) (string, bool) {
	doc := chi.URLParam(r, "doc")
	src, err := s.st.Load(docFile(doc))
	if err != nil {
		http.NotFound(w, r)
		return "", false
	}
	return src, true
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	src, ok := s.loadDoc(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(export.Markdown(src)))
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	src, ok := s.loadDoc(w, r)
	if !ok {
		return
	}
	page := export.HTML(r.Context(), src, s.idx.Extern(), s.macros)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) handleLatex(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	src, ok := s.loadDoc(w, r)
	if !ok {
		return
	}
	fname := docFile(doc)
	name := strings.TrimSuffix(fname, filepath.Ext(fname)) + ".tex"
	w.Header().Set("Content-Type", "application/x-latex")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(name)+`"`)
	w.Write([]byte(export.Latex(src)))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img := chi.URLParam(r, "img")
	fpath, err := s.st.LocalPath(img)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, fpath)
}

func (s *Server) handleRef(w http.ResponseWriter, r *http.Request) {
	label, ok := s.idx.Get().Refs[chi.URLParam(r, "ref")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(label))
}

func (s *Server) handlePop(w http.ResponseWriter, r *http.Request) {
	body, ok := s.idx.Get().Pops[chi.URLParam(r, "pop")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func (s *Server) handleCit(w http.ResponseWriter, r *http.Request) {
	info, ok := s.idx.Get().Cits[chi.URLParam(r, "cit")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleSearch returns ranked [doc, title] pairs for the query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results := s.idx.Get().Search(chi.URLParam(r, "query"))
	pairs := make([][2]string, len(results))
	for i, res := range results {
		pairs[i] = [2]string{res.Doc, res.Title}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pairs)
}
