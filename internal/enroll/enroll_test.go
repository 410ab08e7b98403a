package enroll

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/logger"
)

// colorDetector reports one face covering the image with a one-hot embedding of the
// dominant channel of its top-left pixel. Stored crops are JPEG, so exact colors are lost.
type colorDetector struct {
	err     error
	regions []image.Rectangle
}

func (d *colorDetector) DetectFaces(_ context.Context, img image.Image) ([]facematch.Face, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.regions != nil {
		faces := make([]facematch.Face, len(d.regions))
		for i, r := range d.regions {
			faces[i] = facematch.Face{Region: r, Embedding: facematch.Embedding{1}}
		}
		return faces, nil
	}
	r, g, b, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	emb := facematch.Embedding{0, 0, 0}
	switch {
	case r >= g && r >= b:
		emb[0] = 1
	case g >= b:
		emb[1] = 1
	default:
		emb[2] = 1
	}
	return []facematch.Face{{Region: img.Bounds(), Embedding: emb}}, nil
}

// twoFaces returns a 100x60 frame with a small red face and a larger green one.
func twoFaces() (*image.RGBA, []image.Rectangle) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 60))
	small := image.Rect(5, 5, 25, 25)
	large := image.Rect(40, 10, 90, 55)
	fill(img, small, color.RGBA{R: 255, A: 255})
	fill(img, large, color.RGBA{G: 255, A: 255})
	return img, []image.Rectangle{small, large}
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(x, y, c)
		}
	}
}

type fixture struct {
	dir     string
	det     *colorDetector
	holder  *gallery.Holder
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "known_faces")
	det := &colorDetector{}
	holder := gallery.NewHolder(&gallery.Loader{Dir: dir, Detector: det, Log: logger.NewNop()})
	return &fixture{
		dir:     dir,
		det:     det,
		holder:  holder,
		handler: NewHandler(gallery.NewStore(dir), holder, det, logger.NewNop()),
	}
}

func TestEnroll_PicksMostProminentFace(t *testing.T) {
	f := newFixture(t)
	frame, regions := twoFaces()

	res, err := f.handler.Enroll(context.Background(), "  Eve  ", regions, frame)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if res.Name != "Eve" || res.Identities != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.Region.Eq(regions[1]) {
		t.Errorf("expected larger region, got %v", res.Region)
	}

	eve, ok := f.holder.Current().Lookup("Eve")
	if !ok {
		t.Fatal("expected Eve in reloaded gallery")
	}
	if eve.Embedding[1] != 1 {
		t.Errorf("expected embedding of the green crop, got %v", eve.Embedding)
	}
}

func TestEnroll_Rejections(t *testing.T) {
	frame, regions := twoFaces()

	tests := []struct {
		name    string
		who     string
		regions []image.Rectangle
		frame   image.Image
		wantErr error
	}{
		{"empty name", "", regions, frame, ErrEmptyName},
		{"whitespace name", " \t\n ", regions, frame, ErrEmptyName},
		{"no regions", "Eve", nil, frame, ErrNoFace},
		{"nil frame", "Eve", regions, nil, ErrNoFace},
		{"region outside frame", "Eve", []image.Rectangle{image.Rect(200, 200, 240, 240)}, frame, ErrNoFace},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.holder.Current()

			_, err := f.handler.Enroll(context.Background(), tc.who, tc.regions, tc.frame)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if f.holder.Current() != before {
				t.Error("gallery must not be reloaded")
			}
			if _, err := os.Stat(f.dir); !os.IsNotExist(err) {
				t.Error("store must not be touched")
			}
		})
	}
}

func TestEnroll_ReloadFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "known_faces")
	failing := &colorDetector{err: errors.New("encoder unavailable")}
	holder := gallery.NewHolder(&gallery.Loader{Dir: dir, Detector: failing, Log: logger.NewNop()})
	handler := NewHandler(gallery.NewStore(dir), holder, &colorDetector{}, logger.NewNop())
	frame, regions := twoFaces()

	if _, err := handler.Enroll(context.Background(), "Eve", regions, frame); err == nil {
		t.Fatal("expected reload error")
	}
	if holder.Current().Len() != 0 {
		t.Error("failed reload must keep the previous gallery")
	}
	if _, err := os.Stat(filepath.Join(dir, "Eve.jpg")); err != nil {
		t.Errorf("image should still be stored for the next reload: %v", err)
	}
}

// frameOnlyDetector finds a face only in images at least minWidth wide, like an
// encoder that needs context around a face.
type frameOnlyDetector struct {
	minWidth int
}

func (d *frameOnlyDetector) DetectFaces(_ context.Context, img image.Image) ([]facematch.Face, error) {
	if img.Bounds().Dx() < d.minWidth {
		return nil, nil
	}
	return []facematch.Face{{Region: img.Bounds(), Embedding: facematch.Embedding{1, 0}}}, nil
}

// firstCallDetector finds a face on its first call only.
type firstCallDetector struct {
	calls int
}

func (d *firstCallDetector) DetectFaces(_ context.Context, img image.Image) ([]facematch.Face, error) {
	d.calls++
	if d.calls > 1 {
		return nil, nil
	}
	return []facematch.Face{{Region: img.Bounds(), Embedding: facematch.Embedding{1, 0}}}, nil
}

func TestEnroll_CropWithoutFace(t *testing.T) {
	tests := []struct {
		name     string
		detector facematch.Detector
	}{
		{"rejected before saving", &frameOnlyDetector{minWidth: 100}},
		{"missing after reload", &firstCallDetector{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "known_faces")
			holder := gallery.NewHolder(&gallery.Loader{Dir: dir, Detector: tc.detector, Log: logger.NewNop()})
			handler := NewHandler(gallery.NewStore(dir), holder, tc.detector, logger.NewNop())
			frame, regions := twoFaces()

			res, err := handler.Enroll(context.Background(), "Alice", regions, frame)
			if !errors.Is(err, ErrNotEncoded) {
				t.Fatalf("expected ErrNotEncoded, got %v (result %+v)", err, res)
			}
			if _, ok := holder.Current().Lookup("Alice"); ok {
				t.Error("Alice must not be in the gallery")
			}
			if _, err := os.Stat(filepath.Join(dir, "Alice.jpg")); !os.IsNotExist(err) {
				t.Errorf("unusable crop must not stay in the store: %v", err)
			}
		})
	}
}

func TestEnrollImage(t *testing.T) {
	f := newFixture(t)
	frame, regions := twoFaces()

	path := filepath.Join(t.TempDir(), "eve.png")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(out, frame); err != nil {
		t.Fatal(err)
	}
	out.Close()

	f.det.regions = regions
	res, err := f.handler.EnrollImage(context.Background(), "Eve", path)
	if err != nil {
		t.Fatalf("EnrollImage failed: %v", err)
	}
	if !res.Region.Eq(regions[1]) {
		t.Errorf("expected larger region, got %v", res.Region)
	}

	if _, err := f.handler.EnrollImage(context.Background(), "Eve", filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCrop(t *testing.T) {
	frame, regions := twoFaces()
	crop := Crop(frame, regions[0])

	if crop.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("unexpected crop bounds %v", crop.Bounds())
	}
	if got := crop.RGBAAt(0, 0); got.R != 255 || got.G != 0 {
		t.Errorf("expected red pixel, got %v", got)
	}
}
