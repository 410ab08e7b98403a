// Package recognition runs the per-frame identity decision and the attendance loop.
package recognition

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/kozaktomas/face-attendance/internal/cooldown"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/logger"
)

// GallerySource provides the gallery to match against. gallery.Holder implements it.
type GallerySource interface {
	Current() *gallery.Gallery
}

// Engine decides identities and writes attendance for single frames.
// It is not safe for concurrent use; the runner goroutine owns it.
type Engine struct {
	detector  facematch.Detector
	galleries GallerySource
	tracker   *cooldown.Tracker
	sink      ledger.Sink
	tolerance float64
	log       *logger.Logger
}

func NewEngine(detector facematch.Detector, galleries GallerySource, tracker *cooldown.Tracker, sink ledger.Sink, tolerance float64, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		detector:  detector,
		galleries: galleries,
		tracker:   tracker,
		sink:      sink,
		tolerance: tolerance,
		log:       log,
	}
}

// Step detects faces in frame and resolves each of them at time now.
// Resolutions are returned in detection order.
func (e *Engine) Step(ctx context.Context, frame image.Image, now time.Time) (FrameResult, error) {
	result := FrameResult{Frame: frame, At: now}

	faces, err := e.detector.DetectFaces(ctx, frame)
	if err != nil {
		return result, fmt.Errorf("detecting faces: %w", err)
	}
	result.Faces = faces

	g := e.galleries.Current()
	result.Resolutions = make([]Resolution, len(faces))
	for i, face := range faces {
		result.Resolutions[i] = e.resolve(ctx, g, face, now)
	}
	return result, nil
}

func (e *Engine) resolve(ctx context.Context, g *gallery.Gallery, face facematch.Face, now time.Time) Resolution {
	res := Resolution{Region: face.Region, Outcome: OutcomeUnknown}

	m := g.Match(face.Embedding, e.tolerance)
	best, ok := m.Best()
	if !ok {
		if !math.IsInf(m.Nearest, 1) {
			res.Distance = m.Nearest
			e.log.Debug("Unknown face", "nearest", m.NearestName, "distance", m.Nearest)
		}
		return res
	}
	if len(m.Candidates) > 1 {
		e.log.Debug("Ambiguous match, using first in gallery order", "name", best.Name, "candidates", len(m.Candidates))
	}

	res.Name = best.Name
	res.Distance = best.Distance

	if e.tracker.ShouldSuppress(best.Name, now) {
		res.Outcome = OutcomeSuppressed
		res.Remaining = e.tracker.Remaining(best.Name, now)
		return res
	}

	rec := ledger.NewRecord(best.Name, now)
	if err := e.sink.Append(ctx, rec); err != nil {
		e.log.Error("Failed to write attendance", "name", best.Name, "error", err)
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	e.tracker.Record(best.Name, now)
	e.log.Info("Attendance marked", "name", best.Name, "date", rec.Date, "time", rec.Time)

	res.Outcome = OutcomeAccepted
	return res
}
