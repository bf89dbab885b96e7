package collab

import (
	"log/slog"
	"sync"
	"time"

	"github.com/spiritlab/spirit/internal/store"
)

// Router multiplexes clients onto shared documents. Each open document
// has one DocumentHandler; the clients attached to it are kept in join
// order, and only the earliest surviving one (the leader) may submit
// edits. Everyone else follows in readonly mode until leadership passes
// to them.
//
// All membership state is serialized behind a single mutex, so there is
// exactly one answer at any moment to "who leads this document".
type Router struct {
	st   *store.Store
	rate time.Duration
	log  *slog.Logger

	mu   sync.Mutex
	docs map[string]*DocumentHandler
	clis *multimap[string, *ClientHandler]
}

func NewRouter(st *store.Store, rate time.Duration, log *slog.Logger) *Router {
	return &Router{
		st:   st,
		rate: rate,
		log:  log,
		docs: make(map[string]*DocumentHandler),
		clis: newMultimap[string, *ClientHandler](),
	}
}

// Add attaches a client to the document at fpath, detaching it from any
// document it was on before. The client receives the current text and a
// readonly notice when it is not the document's leader.
func (r *Router) Add(fpath string, c *ClientHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.clis.loc(c); ok && prev != fpath {
		r.detach(c)
	}

	dh, ok := r.docs[fpath]
	if !ok {
		var err error
		dh, err = newDocumentHandler(fpath, r.rate, r.log)
		if err != nil {
			return err
		}
		r.docs[fpath] = dh
	}
	r.clis.add(fpath, c)
	c.sendLoad(r.st.DocName(fpath), dh.Text())
	// A re-issued load keeps the client's position, so the leader must
	// not be locked just because followers are attached.
	if r.clis.idx(c) != 0 {
		c.sendReadonly(true)
	}
	return nil
}

// Del detaches a client. When the leader leaves, the next client in
// join order is promoted and told it may write; when the last client
// leaves, the document is saved and discarded.
func (r *Router) Del(c *ClientHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detach(c)
}

// detach does the work of Del; the caller holds r.mu.
func (r *Router) detach(c *ClientHandler) {
	idx := r.clis.idx(c)
	fpath, ok := r.clis.pop(c)
	if !ok {
		return
	}
	if r.clis.num(fpath) == 0 {
		dh := r.docs[fpath]
		delete(r.docs, fpath)
		dh.Close()
		return
	}
	if idx == 0 {
		leader := r.clis.get(fpath)[0]
		leader.sendReadonly(false)
	}
}

// Has reports whether the client is attached to any document.
func (r *Router) Has(c *ClientHandler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clis.has(c)
}

// Update applies a change set submitted by c to its document and relays
// it to every other client on that document. Submissions from anyone but
// the leader are logged and dropped.
func (r *Router) Update(c *ClientHandler, cs *ChangeSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fpath, ok := r.clis.loc(c)
	if !ok {
		c.log.Warn("update from client with no document")
		return
	}
	if r.clis.idx(c) != 0 {
		c.log.Warn("update from non-leader dropped", "path", fpath)
		return
	}
	dh := r.docs[fpath]
	if err := dh.Update(cs); err != nil {
		c.log.Error("rejecting change set", "path", fpath, "error", err)
		return
	}
	doc := r.st.DocName(fpath)
	for _, other := range r.clis.get(fpath) {
		if other != c {
			other.sendUpdate(doc, cs.Raw())
		}
	}
}

// Save flushes c's document to disk on request. Save requests from
// non-leaders are logged and dropped.
func (r *Router) Save(c *ClientHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fpath, ok := r.clis.loc(c)
	if !ok {
		c.log.Warn("save from client with no document")
		return
	}
	if r.clis.idx(c) != 0 {
		c.log.Warn("save from non-leader dropped", "path", fpath)
		return
	}
	r.docs[fpath].Save()
}

// Shutdown detaches every client and closes every open document,
// flushing unsaved changes.
func (r *Router) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for fpath, dh := range r.docs {
		delete(r.docs, fpath)
		dh.Close()
	}
	r.clis = newMultimap[string, *ClientHandler]()
}

// state is a debug snapshot of the routing table.
func (r *Router) state() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]string, len(r.docs))
	for fpath := range r.docs {
		ids := make([]string, 0, r.clis.num(fpath))
		for _, c := range r.clis.get(fpath) {
			ids = append(ids, c.id)
		}
		out[fpath] = ids
	}
	return out
}
