// Package render draws recognition results onto frames.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Box colors per outcome.
var (
	ColorUnknown    = color.RGBA{R: 255, A: 255}
	ColorSuppressed = color.RGBA{R: 255, G: 255, A: 255}
	ColorAccepted   = color.RGBA{G: 255, A: 255}
	ColorFailed     = color.RGBA{R: 255, G: 140, A: 255}
)

const lineWidth = 2

// Color returns the box color for an outcome.
func Color(o recognition.Outcome) color.RGBA {
	switch o {
	case recognition.OutcomeSuppressed:
		return ColorSuppressed
	case recognition.OutcomeAccepted:
		return ColorAccepted
	case recognition.OutcomeFailed:
		return ColorFailed
	default:
		return ColorUnknown
	}
}

// Label returns the caption drawn above a face.
func Label(r recognition.Resolution) string {
	switch r.Outcome {
	case recognition.OutcomeSuppressed:
		return fmt.Sprintf("%s - Wait %ds", r.Name, int(math.Ceil(r.Remaining.Seconds())))
	case recognition.OutcomeAccepted:
		return r.Name
	case recognition.OutcomeFailed:
		return r.Name + " - not saved"
	default:
		return "Unknown"
	}
}

// Annotator draws boxes and captions.
type Annotator struct {
	face font.Face
}

// NewAnnotator loads a TrueType font from fontPath, or uses a built-in bitmap
// font when fontPath is empty.
func NewAnnotator(fontPath string, size float64) (*Annotator, error) {
	if fontPath == "" {
		return &Annotator{face: basicfont.Face7x13}, nil
	}
	face, err := loadFontFace(fontPath, size)
	if err != nil {
		return nil, err
	}
	return &Annotator{face: face}, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Annotate returns a copy of frame with one box and caption per resolution.
func (a *Annotator) Annotate(frame image.Image, resolutions []recognition.Resolution) *image.RGBA {
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, frame, b, draw.Src, nil)

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(a.face)
	dc.SetLineWidth(lineWidth)

	for _, r := range resolutions {
		region := r.Region.Sub(b.Min)
		if region.Empty() {
			continue
		}
		dc.SetColor(Color(r.Outcome))
		dc.DrawRectangle(float64(region.Min.X), float64(region.Min.Y), float64(region.Dx()), float64(region.Dy()))
		dc.Stroke()

		label := Label(r)
		_, th := dc.MeasureString(label)
		y := float64(region.Min.Y) - 10
		if y < th {
			y = float64(region.Min.Y) + th + 4
		}
		dc.DrawString(label, float64(region.Min.X), y)
	}
	return dst
}
