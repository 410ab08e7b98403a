package recognition

import (
	"errors"
	"image"
	"testing"
	"time"
)

func frameWith(at time.Time, rs ...Resolution) FrameResult {
	return FrameResult{At: at, Resolutions: rs}
}

func TestHistory_RecentNewestFirst(t *testing.T) {
	h := NewHistory(3)
	for i, name := range []string{"a", "b", "c", "d"} {
		h.Add(frameWith(t0.Add(time.Duration(i)*time.Second), Resolution{Name: name, Outcome: OutcomeAccepted}))
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{"d", "c", "b"}},
		{2, []string{"d", "c"}},
		{10, []string{"d", "c", "b"}},
	}
	for _, tc := range tests {
		got := h.Recent(tc.limit)
		if len(got) != len(tc.want) {
			t.Fatalf("limit %d: expected %d events, got %d", tc.limit, len(tc.want), len(got))
		}
		for i := range got {
			if got[i].Name != tc.want[i] {
				t.Errorf("limit %d: event %d = %q, want %q", tc.limit, i, got[i].Name, tc.want[i])
			}
		}
	}
}

func TestHistory_EventFields(t *testing.T) {
	h := NewHistory(4)
	h.Add(frameWith(t0,
		Resolution{Region: image.Rect(1, 2, 3, 4), Name: "Bob", Outcome: OutcomeSuppressed, Remaining: 30 * time.Second},
		Resolution{Name: "Alice", Outcome: OutcomeFailed, Err: errors.New("disk full")},
	))
	h.Add(frameWith(t0.Add(time.Second)))

	events := h.Recent(0)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if e := events[1]; e.Region != [4]int{1, 2, 3, 4} || e.Remaining != 30 {
		t.Errorf("unexpected suppressed event %+v", e)
	}
	if e := events[0]; e.Error != "disk full" {
		t.Errorf("unexpected failed event %+v", e)
	}

	stats := h.Stats()
	if stats.Frames != 2 || stats.Outcomes["failed"] != 1 || stats.Outcomes["unknown"] != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if !stats.LastFrame.Equal(t0.Add(time.Second)) {
		t.Errorf("unexpected last frame %v", stats.LastFrame)
	}
}
