package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/enroll"
	"github.com/kozaktomas/face-attendance/internal/logger"
)

// ErrQueueFull is returned by Submit when too many commands are pending.
var ErrQueueFull = errors.New("command queue is full")

// Source delivers frames. Read blocks until a frame is available.
type Source interface {
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// Key is a key press reported by the display.
type Key rune

const (
	KeyNone   Key = 0
	KeyEnroll Key = 's'
	KeyQuit   Key = 'q'
)

// Display shows an annotated frame and returns the last key pressed, KeyNone if none.
type Display interface {
	Show(frame image.Image, resolutions []Resolution) (Key, error)
	Close() error
}

// HeadlessDisplay discards frames. Used when no window is available.
type HeadlessDisplay struct{}

func (HeadlessDisplay) Show(image.Image, []Resolution) (Key, error) { return KeyNone, nil }
func (HeadlessDisplay) Close() error                                { return nil }

// Enroller stores a face under a name. enroll.Handler implements it.
type Enroller interface {
	Enroll(ctx context.Context, name string, regions []image.Rectangle, frame image.Image) (*enroll.Result, error)
}

// Command asks the loop to enroll a face. Without Frame the loop uses the
// latest processed frame and its regions.
type Command struct {
	Name    string
	Frame   image.Image
	Regions []image.Rectangle
	// Reply receives the outcome when set. It must be buffered.
	Reply chan<- CommandResult
}

// CommandResult is the outcome of a Command.
type CommandResult struct {
	Result *enroll.Result
	Err    error
}

// Runner owns the frame loop. All engine state is touched only from Run.
type Runner struct {
	engine   *Engine
	source   Source
	display  Display
	enroller Enroller
	history  *History
	prompter *Prompter
	commands chan Command
	log      *logger.Logger
	now      func() time.Time

	latest FrameResult
}

func NewRunner(engine *Engine, source Source, display Display, enroller Enroller, history *History, log *logger.Logger) *Runner {
	if display == nil {
		display = HeadlessDisplay{}
	}
	if history == nil {
		history = NewHistory(constants.HistorySize)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		engine:   engine,
		source:   source,
		display:  display,
		enroller: enroller,
		history:  history,
		commands: make(chan Command, constants.CommandQueueSize),
		log:      log,
		now:      time.Now,
	}
}

// SetPrompter enables interactive enrollment on KeyEnroll.
func (r *Runner) SetPrompter(p *Prompter) {
	r.prompter = p
}

// SetClock replaces the wall clock.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// History returns the event history written by the loop.
func (r *Runner) History() *History {
	return r.history
}

// Submit queues an enrollment command without blocking. Safe for concurrent use.
func (r *Runner) Submit(cmd Command) error {
	select {
	case r.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes frames until ctx is cancelled, the quit key is pressed or the
// source fails. Up to MaxEmptyFrames consecutive camera.ErrNoFrame reads are
// skipped. The source and display are closed on return.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		if err := r.display.Close(); err != nil {
			r.log.Warn("Failed to close display", "error", err)
		}
		if err := r.source.Close(); err != nil {
			r.log.Warn("Failed to close video source", "error", err)
		}
	}()

	empty := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := r.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, camera.ErrNoFrame) && empty < constants.MaxEmptyFrames {
				empty++
				r.log.Warn("No frame from video source, retrying", "consecutive", empty, "error", err)
				continue
			}
			return fmt.Errorf("reading frame: %w", err)
		}
		empty = 0

		res, err := r.engine.Step(ctx, frame, r.now())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.log.Warn("Face detection failed", "error", err)
		}
		r.latest = res
		r.history.Add(res)

		r.drainCommands(ctx)

		key, err := r.display.Show(frame, res.Resolutions)
		if err != nil {
			return fmt.Errorf("showing frame: %w", err)
		}
		switch key {
		case KeyQuit:
			r.log.Info("Quit requested")
			return nil
		case KeyEnroll:
			r.requestEnrollment(ctx, res)
		}
	}
}

func (r *Runner) requestEnrollment(ctx context.Context, res FrameResult) {
	if len(res.Faces) == 0 {
		r.log.Info("No face detected, cannot save")
		return
	}
	if r.prompter == nil {
		r.log.Warn("Interactive enrollment is not available")
		return
	}
	cmd := Command{Frame: res.Frame, Regions: res.Regions()}
	if !r.prompter.Ask(ctx, cmd) {
		r.log.Info("Enrollment prompt already open")
	}
}

func (r *Runner) drainCommands(ctx context.Context) {
	for {
		select {
		case cmd := <-r.commands:
			r.handle(ctx, cmd)
		default:
			return
		}
	}
}

func (r *Runner) handle(ctx context.Context, cmd Command) {
	frame, regions := cmd.Frame, cmd.Regions
	if frame == nil {
		frame, regions = r.latest.Frame, r.latest.Regions()
	}

	res, err := r.enroller.Enroll(ctx, cmd.Name, regions, frame)
	switch {
	case errors.Is(err, enroll.ErrEmptyName):
		r.log.Warn("Invalid name, face not saved")
	case errors.Is(err, enroll.ErrNoFace):
		r.log.Warn("No face to enroll", "name", cmd.Name)
	case errors.Is(err, enroll.ErrNotEncoded):
		r.log.Warn("Face crop could not be encoded, not saved", "name", cmd.Name)
	case err != nil:
		r.log.Error("Enrollment failed", "name", cmd.Name, "error", err)
	default:
		r.log.Info("Enrolled new face", "name", res.Name, "identities", res.Identities)
	}

	if cmd.Reply != nil {
		select {
		case cmd.Reply <- CommandResult{Result: res, Err: err}:
		default:
		}
	}
}
