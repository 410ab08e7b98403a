package recognition

import (
	"context"
	"image"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/enroll"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/ledger"
)

type staticDetector struct {
	faces []facematch.Face
	err   error
}

func (d *staticDetector) DetectFaces(context.Context, image.Image) ([]facematch.Face, error) {
	return d.faces, d.err
}

type staticGallery struct {
	g *gallery.Gallery
}

func (s staticGallery) Current() *gallery.Gallery { return s.g }

type memSink struct {
	mu      sync.Mutex
	records []ledger.Record
	err     error
}

func (s *memSink) Append(_ context.Context, rec ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if r.Name == name {
			n++
		}
	}
	return n
}

var (
	aliceEmb = facematch.Embedding{1, 0, 0}
	bobEmb   = facematch.Embedding{0, 1, 0}
	carolEmb = facematch.Embedding{0, 0, 1}
)

func testGallery() staticGallery {
	return staticGallery{g: gallery.New([]gallery.Entry{
		{Name: "Alice", Embedding: aliceEmb},
		{Name: "Bob", Embedding: bobEmb},
	})}
}

func face(emb facematch.Embedding, x int) facematch.Face {
	return facematch.Face{Region: image.Rect(x, 10, x+40, 60), Embedding: emb}
}

func blankFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 320, 240))
}

type enrollCall struct {
	name    string
	regions []image.Rectangle
	frame   image.Image
}

type fakeEnroller struct {
	mu    sync.Mutex
	calls []enrollCall
	err   error
}

func (e *fakeEnroller) Enroll(_ context.Context, name string, regions []image.Rectangle, frame image.Image) (*enroll.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, enrollCall{name: name, regions: regions, frame: frame})
	if e.err != nil {
		return nil, e.err
	}
	return &enroll.Result{Name: name, Identities: 3}, nil
}
