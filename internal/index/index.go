// Package index maintains a corpus-wide lookup table over the storage
// root: document titles, reference labels, popup bodies, citations, and
// trigram shards for full-text search. An index is an immutable snapshot;
// rebuilds produce a fresh one and swap it in atomically.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/pelletier/go-toml/v2"

	"github.com/spiritlab/spirit/internal/markum"
	"github.com/spiritlab/spirit/internal/store"
)

// paragraph is one search shard: a document id plus the trigram set of
// one block of its text.
type paragraph struct {
	doc   string
	grams map[string]struct{}
}

// Index is an immutable snapshot of the corpus.
type Index struct {
	// Docs maps document id to title.
	Docs map[string]string
	// Refs maps "doc:id" to a display label like "Other Doc: Figure 2".
	Refs map[string]string
	// Pops maps "doc:id" to rendered popup HTML.
	Pops map[string]string
	// Cits maps "file:key" to citation metadata from .toml files.
	Cits map[string]markum.CiteInfo

	shards []paragraph
}

// Holder republishes index snapshots. Readers always see a complete
// index; a rebuild in progress never shows partial state.
type Holder struct {
	ptr atomic.Pointer[Index]
}

func NewHolder() *Holder {
	h := &Holder{}
	h.ptr.Store(&Index{
		Docs: map[string]string{},
		Refs: map[string]string{},
		Pops: map[string]string{},
		Cits: map[string]markum.CiteInfo{},
	})
	return h
}

func (h *Holder) Get() *Index {
	return h.ptr.Load()
}

func (h *Holder) Set(ix *Index) {
	h.ptr.Store(ix)
}

var blockSplit = regexp.MustCompile(`\n{2,}`)

// Build walks the storage root and constructs a fresh snapshot. Documents
// that fail to load are logged and skipped; a broken file never blocks
// indexing of the rest of the corpus.
func Build(ctx context.Context, st *store.Store, log *slog.Logger) (*Index, error) {
	ix := &Index{
		Docs: map[string]string{},
		Refs: map[string]string{},
		Pops: map[string]string{},
		Cits: map[string]markum.CiteInfo{},
	}

	names, err := st.List(".md")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	for _, name := range names {
		src, err := st.Load(name)
		if err != nil {
			log.Warn("skipping unreadable document", "doc", name, "error", err)
			continue
		}
		ix.addDoc(ctx, name, src)
	}

	bibs, err := st.List(".toml")
	if err != nil {
		return nil, fmt.Errorf("listing citation files: %w", err)
	}
	for _, name := range bibs {
		src, err := st.Load(name)
		if err != nil {
			log.Warn("skipping unreadable citation file", "file", name, "error", err)
			continue
		}
		if err := ix.addCitations(name, src); err != nil {
			log.Warn("skipping malformed citation file", "file", name, "error", err)
		}
	}

	log.Info("index built",
		"docs", len(ix.Docs), "refs", len(ix.Refs),
		"pops", len(ix.Pops), "cits", len(ix.Cits), "shards", len(ix.shards))
	return ix, nil
}

// addDoc indexes one document. Ids are filenames with the .md extension
// stripped, matching how documents are addressed in references and URLs.
func (ix *Index) addDoc(ctx context.Context, name, src string) {
	doc := strings.TrimSuffix(name, ".md")

	tree := markum.ParseDocument(src)
	rc := markum.NewContext()
	markum.Refs(tree, rc)

	title := store.TitleFromFilename(name)
	if rc.Title != nil {
		if t := strings.TrimSpace(markum.InnerText(rc.Title.Children)); t != "" {
			title = t
		}
	}
	ix.Docs[doc] = title

	for id, label := range rc.Refer() {
		ix.Refs[doc+":"+id] = title + ": " + label
	}

	popCtx := *rc
	popCtx.InPopup = true
	for id, node := range rc.Popups() {
		ix.Pops[doc+":"+id] = markum.HTML(ctx, node, &popCtx)
	}

	for _, block := range blockSplit.Split(strings.TrimSpace(src), -1) {
		grams := trigrams(block)
		if len(grams) > 0 {
			ix.shards = append(ix.shards, paragraph{doc: doc, grams: grams})
		}
	}
}

// addCitations merges one .toml bibliography file: every top-level table
// is a citation keyed "file:key" with title/author/year fields.
func (ix *Index) addCitations(name, src string) error {
	var entries map[string]markum.CiteInfo
	if err := toml.Unmarshal([]byte(src), &entries); err != nil {
		return err
	}
	base := strings.TrimSuffix(name, ".toml")
	for key, info := range entries {
		ix.Cits[base+":"+key] = info
	}
	return nil
}
