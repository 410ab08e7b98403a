// Package webcam reads frames from a local capture device through OpenCV.
package webcam

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Device is an OpenCV video capture. It is not safe for concurrent use.
type Device struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// Open opens a capture device by index ("0") or by path/URL.
func Open(device string) (*Device, error) {
	var id any = device
	if n, err := strconv.Atoi(device); err == nil {
		id = n
	}

	capture, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("opening video device %s: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video device %s is not available", device)
	}
	d := &Device{capture: capture, mat: gocv.NewMat()}

	// Devices often return empty frames right after opening.
	for range constants.WebcamWarmupReads {
		if d.grab() {
			return d, nil
		}
	}
	d.Close()
	return nil, fmt.Errorf("video device %s delivers no frames: %w", device, camera.ErrNoFrame)
}

// grab reads one frame into d.mat and reports whether it is usable.
func (d *Device) grab() bool {
	return d.capture.Read(&d.mat) && !d.mat.Empty()
}

// Read grabs the next frame and converts it from BGR to an RGB image.
// A few empty captures in a row are retried before ErrNoFrame is returned.
func (d *Device) Read(ctx context.Context) (image.Image, error) {
	ok := false
	for attempt := 0; attempt < constants.WebcamReadRetries && !ok; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok = d.grab()
	}
	if !ok {
		return nil, camera.ErrNoFrame
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	return img, nil
}

func (d *Device) Close() error {
	d.mat.Close()
	return d.capture.Close()
}
