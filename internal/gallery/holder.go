package gallery

import (
	"context"
	"sync/atomic"
)

// Holder publishes the current gallery. Reload builds a complete new gallery
// before swapping it in, so readers never observe a partial one.
type Holder struct {
	current atomic.Pointer[Gallery]
	loader  *Loader
}

// NewHolder creates a holder starting with an empty gallery.
func NewHolder(loader *Loader) *Holder {
	h := &Holder{loader: loader}
	h.current.Store(Empty())
	return h
}

// Current returns the gallery in use.
func (h *Holder) Current() *Gallery {
	return h.current.Load()
}

// Set replaces the current gallery.
func (h *Holder) Set(g *Gallery) {
	if g == nil {
		g = Empty()
	}
	h.current.Store(g)
}

// Reload loads a fresh gallery and swaps it in. On error the previous gallery stays current.
func (h *Holder) Reload(ctx context.Context) (*Gallery, error) {
	g, err := h.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	h.current.Store(g)
	return g, nil
}
