package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/kozaktomas/face-attendance/internal/gallery"
)

// GallerySource provides the current gallery.
type GallerySource interface {
	Current() *gallery.Gallery
}

// GalleryHandler lists enrolled identities.
type GalleryHandler struct {
	galleries GallerySource
}

func NewGalleryHandler(galleries GallerySource) *GalleryHandler {
	return &GalleryHandler{galleries: galleries}
}

// IdentityResponse is one enrolled identity.
type IdentityResponse struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	Dimension int    `json:"dim"`
}

// GalleryResponse lists identities in matching order.
type GalleryResponse struct {
	Count      int                `json:"count"`
	Identities []IdentityResponse `json:"identities"`
}

// List returns the identities of the current gallery.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	g := h.galleries.Current()
	resp := GalleryResponse{
		Count:      g.Len(),
		Identities: make([]IdentityResponse, 0, g.Len()),
	}
	for _, e := range g.Entries() {
		resp.Identities = append(resp.Identities, IdentityResponse{
			Name:      e.Name,
			File:      filepath.Base(e.Path),
			Dimension: len(e.Embedding),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}
