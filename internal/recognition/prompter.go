package recognition

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/kozaktomas/face-attendance/internal/logger"
)

// Prompter asks the operator for a name on a terminal and submits the
// resulting Command. Only one prompt is open at a time; lines typed while no
// prompt is open are discarded.
type Prompter struct {
	in     io.Reader
	out    io.Writer
	submit func(Command) error
	log    *logger.Logger

	lines chan string
	busy  atomic.Bool
}

func NewPrompter(in io.Reader, out io.Writer, submit func(Command) error, log *logger.Logger) *Prompter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Prompter{
		in:     in,
		out:    out,
		submit: submit,
		log:    log,
		lines:  make(chan string),
	}
}

// Start reads input lines until EOF or ctx is done.
func (p *Prompter) Start(ctx context.Context) {
	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			if !p.busy.Load() {
				continue
			}
			select {
			case p.lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Ask opens a prompt for cmd and returns false if one is already open.
// The name is read asynchronously; the loop keeps running meanwhile.
func (p *Prompter) Ask(ctx context.Context, cmd Command) bool {
	if !p.busy.CompareAndSwap(false, true) {
		return false
	}
	fmt.Fprint(p.out, "Enter name for this person: ")

	go func() {
		defer p.busy.Store(false)
		select {
		case line, ok := <-p.lines:
			if !ok {
				p.log.Warn("Input closed, enrollment cancelled")
				return
			}
			cmd.Name = line
			if err := p.submit(cmd); err != nil {
				p.log.Error("Failed to queue enrollment", "error", err)
			}
		case <-ctx.Done():
		}
	}()
	return true
}

// Busy reports whether a prompt is open.
func (p *Prompter) Busy() bool {
	return p.busy.Load()
}
