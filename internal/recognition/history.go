package recognition

import (
	"sync"
	"time"
)

// Event is a resolution as exposed to readers outside the loop.
type Event struct {
	At        time.Time `json:"at"`
	Name      string    `json:"name,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Distance  float64   `json:"distance"`
	Remaining float64   `json:"remaining_seconds,omitempty"`
	Region    [4]int    `json:"region"`
	Error     string    `json:"error,omitempty"`
}

// Stats are counters since start.
type Stats struct {
	Frames    int64            `json:"frames"`
	Outcomes  map[string]int64 `json:"outcomes"`
	LastFrame time.Time        `json:"last_frame,omitzero"`
}

// History is a bounded ring of recent events. The loop writes, HTTP handlers read.
type History struct {
	mu       sync.Mutex
	events   []Event
	next     int
	full     bool
	frames   int64
	outcomes map[Outcome]int64
	last     time.Time
}

// NewHistory keeps up to size events. size below 1 is treated as 1.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{
		events:   make([]Event, size),
		outcomes: make(map[Outcome]int64),
	}
}

// Add records the resolutions of one frame.
func (h *History) Add(res FrameResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frames++
	h.last = res.At
	for _, r := range res.Resolutions {
		h.outcomes[r.Outcome]++
		h.events[h.next] = newEvent(res.At, r)
		h.next = (h.next + 1) % len(h.events)
		if h.next == 0 {
			h.full = true
		}
	}
}

func newEvent(at time.Time, r Resolution) Event {
	ev := Event{
		At:        at,
		Name:      r.Name,
		Outcome:   r.Outcome,
		Distance:  r.Distance,
		Remaining: r.Remaining.Seconds(),
		Region:    [4]int{r.Region.Min.X, r.Region.Min.Y, r.Region.Max.X, r.Region.Max.Y},
	}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	return ev
}

// Recent returns up to limit events, newest first. limit <= 0 returns all kept events.
func (h *History) Recent(limit int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.full {
		n = len(h.events)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.events)) % len(h.events)
		out = append(out, h.events[idx])
	}
	return out
}

// Stats returns frame and outcome counters.
func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Stats{Frames: h.frames, LastFrame: h.last, Outcomes: make(map[string]int64, len(outcomeNames))}
	for o := range outcomeNames {
		s.Outcomes[o.String()] = h.outcomes[o]
	}
	return s
}
