// Package enroll adds new identities to the enrollment store and refreshes the gallery.
package enroll

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/logger"
)

var (
	// ErrEmptyName is returned when the name is empty after trimming.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrNoFace is returned when there is no face region to enroll.
	ErrNoFace = errors.New("no face in frame")
	// ErrNotEncoded is returned when the encoder finds no face in the face crop.
	ErrNotEncoded = errors.New("no face found in the face crop")
)

// Result describes a completed enrollment.
type Result struct {
	Name       string
	Path       string
	Region     image.Rectangle
	Identities int // gallery size after reload
}

// Handler saves face crops into the store and reloads the gallery.
type Handler struct {
	store    *gallery.Store
	holder   *gallery.Holder
	detector facematch.Detector
	log      *logger.Logger
}

func NewHandler(store *gallery.Store, holder *gallery.Holder, detector facematch.Detector, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{store: store, holder: holder, detector: detector, log: log}
}

// Enroll stores the most prominent of regions from frame under name and reloads
// the gallery. An invalid name, a missing face or a crop the encoder finds no
// face in leaves store and gallery untouched.
func (h *Handler) Enroll(ctx context.Context, name string, regions []image.Rectangle, frame image.Image) (*Result, error) {
	name = facematch.NormalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if frame == nil {
		return nil, ErrNoFace
	}

	idx := facematch.MostProminent(regions)
	if idx < 0 {
		return nil, ErrNoFace
	}
	region := regions[idx].Intersect(frame.Bounds())
	if region.Empty() {
		return nil, ErrNoFace
	}

	if prev, ok := h.holder.Current().Find(name); ok && prev.Name != facematch.NameKey(name) {
		h.log.Warn("Similar name already enrolled, storing a separate identity", "name", name, "existing", prev.Name)
	}

	crop := Crop(frame, region)
	faces, err := h.detector.DetectFaces(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("encoding face for %s: %w", name, err)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("enrolling %s: %w", name, ErrNotEncoded)
	}

	path, err := h.store.Save(name, crop)
	if err != nil {
		return nil, fmt.Errorf("saving face for %s: %w", name, err)
	}
	h.log.Info("Saved new face", "name", name, "path", path)

	g, err := h.holder.Reload(ctx)
	if err != nil {
		return nil, fmt.Errorf("reloading gallery after enrolling %s: %w", name, err)
	}
	h.log.Info("Gallery reloaded", "identities", g.Len())

	identity := gallery.IdentityName(path)
	if _, ok := g.Lookup(identity); !ok {
		if err := os.Remove(path); err != nil {
			h.log.Warn("Failed to remove unusable enrollment image", "path", path, "error", err)
		}
		return nil, fmt.Errorf("enrolling %s: %w", name, ErrNotEncoded)
	}

	return &Result{
		Name:       identity,
		Path:       path,
		Region:     region,
		Identities: g.Len(),
	}, nil
}

// EnrollImage enrolls name from an image file, detecting faces first.
func (h *Handler) EnrollImage(ctx context.Context, name, path string) (*Result, error) {
	if facematch.NormalizeName(name) == "" {
		return nil, ErrEmptyName
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	faces, err := h.detector.DetectFaces(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	return h.Enroll(ctx, name, facematch.Regions(faces), img)
}

// Crop copies region of img into a new zero-origin RGBA image.
func Crop(img image.Image, region image.Rectangle) *image.RGBA {
	region = region.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Copy(dst, image.Point{}, img, region, draw.Src, nil)
	return dst
}
