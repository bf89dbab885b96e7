package collab

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spiritlab/spirit/internal/store"
)

// DocumentHandler holds the authoritative in-memory text for one open
// document, tracks whether it has unsaved changes, and flushes it to disk
// on an autosave interval and once more when the last client leaves.
type DocumentHandler struct {
	fpath string
	log   *slog.Logger

	mu    sync.Mutex
	text  Text
	dirty bool

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// newDocumentHandler loads the document at fpath, creating an empty file
// if none exists, and starts the autosave loop.
func newDocumentHandler(fpath string, rate time.Duration, log *slog.Logger) (*DocumentHandler, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", fpath, err)
		}
		if err := store.WriteFile(fpath, ""); err != nil {
			return nil, fmt.Errorf("creating %s: %w", fpath, err)
		}
	}
	d := &DocumentHandler{
		fpath: fpath,
		log:   log,
		text:  NewText(string(data)),
		stop:  make(chan struct{}),
	}
	d.wg.Add(1)
	go d.autosave(rate)
	return d, nil
}

func (d *DocumentHandler) autosave(rate time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.Save()
		case <-d.stop:
			return
		}
	}
}

// Update applies a change set to the buffer and marks it dirty.
func (d *DocumentHandler) Update(cs *ChangeSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := cs.Apply(d.text)
	if err != nil {
		return err
	}
	d.text = next
	d.dirty = true
	return nil
}

// Save writes the buffer to disk if it has changed since the last save.
func (d *DocumentHandler) Save() {
	d.mu.Lock()
	if !d.dirty {
		d.mu.Unlock()
		return
	}
	text := d.text.String()
	d.dirty = false
	d.mu.Unlock()

	if err := store.WriteFile(d.fpath, text); err != nil {
		d.log.Error("autosave failed", "path", d.fpath, "error", err)
		d.mu.Lock()
		d.dirty = true
		d.mu.Unlock()
		return
	}
	d.log.Debug("document saved", "path", d.fpath)
}

// Close stops the autosave loop and performs a final save. Safe to call
// more than once.
func (d *DocumentHandler) Close() {
	d.once.Do(func() {
		close(d.stop)
		d.wg.Wait()
		d.Save()
	})
}

// Text returns the current buffer contents.
func (d *DocumentHandler) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text.String()
}
