// Package display shows annotated frames in an OpenCV window.
package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/kozaktomas/face-attendance/internal/render"
)

// Window renders resolutions with an Annotator and polls the keyboard.
// It must be used from the goroutine that created it.
type Window struct {
	window    *gocv.Window
	annotator *render.Annotator
}

func NewWindow(title string, annotator *render.Annotator) *Window {
	return &Window{
		window:    gocv.NewWindow(title),
		annotator: annotator,
	}
}

// Show draws frame and returns the key pressed within one millisecond.
func (w *Window) Show(frame image.Image, resolutions []recognition.Resolution) (recognition.Key, error) {
	annotated := w.annotator.Annotate(frame, resolutions)

	mat, err := gocv.ImageToMatRGB(annotated)
	if err != nil {
		return recognition.KeyNone, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	w.window.IMShow(mat)
	key := w.window.WaitKey(1)
	if key < 0 {
		return recognition.KeyNone, nil
	}
	return recognition.Key(key & 0xFF), nil
}

func (w *Window) Close() error {
	return w.window.Close()
}
