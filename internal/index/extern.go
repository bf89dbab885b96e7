package index

import (
	"context"

	"github.com/spiritlab/spirit/internal/markum"
)

// Extern adapts the live index to the renderer's external-resource
// interface, so cross-document references, popups and citations resolve
// against the current snapshot at render time.
type Extern struct {
	holder *Holder
}

func (h *Holder) Extern() *Extern {
	return &Extern{holder: h}
}

func (e *Extern) Image(ctx context.Context, id string) (string, error) {
	// Uploaded images are served by the image endpoint; the renderer only
	// needs the URL.
	return "/img/" + id, nil
}

func (e *Extern) Ref(ctx context.Context, id string) (string, error) {
	label, ok := e.holder.Get().Refs[id]
	if !ok {
		return "", markum.ErrNotFound
	}
	return label, nil
}

func (e *Extern) Popup(ctx context.Context, id string) (string, error) {
	body, ok := e.holder.Get().Pops[id]
	if !ok {
		return "", markum.ErrNotFound
	}
	return body, nil
}

func (e *Extern) Citation(ctx context.Context, id string) (*markum.CiteInfo, error) {
	info, ok := e.holder.Get().Cits[id]
	if !ok {
		return nil, markum.ErrNotFound
	}
	return &info, nil
}
