// Package camera provides frame sources for the recognition loop.
package camera

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrNoFrame is returned when a source temporarily has no usable frame. Callers
// may retry. A finite source signals its end with io.EOF instead.
var ErrNoFrame = errors.New("no frame available")

// Source delivers frames in RGB. Read blocks until a frame is available.
type Source interface {
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// pacer spaces reads at least interval apart.
type pacer struct {
	interval time.Duration
	last     time.Time
}

func (p *pacer) wait(ctx context.Context) error {
	if p.interval <= 0 || p.last.IsZero() {
		p.last = time.Now()
		return nil
	}
	if d := p.interval - time.Since(p.last); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	p.last = time.Now()
	return nil
}
