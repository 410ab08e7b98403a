package recognition

import (
	"fmt"
	"image"
	"time"

	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// Outcome is the decision taken for one detected face.
type Outcome int

const (
	// OutcomeUnknown means no gallery entry is within tolerance.
	OutcomeUnknown Outcome = iota
	// OutcomeSuppressed means the identity is known but still in cooldown.
	OutcomeSuppressed
	// OutcomeAccepted means an attendance record was written.
	OutcomeAccepted
	// OutcomeFailed means the identity was eligible but the ledger write failed.
	OutcomeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeUnknown:    "unknown",
	OutcomeSuppressed: "suppressed",
	OutcomeAccepted:   "accepted",
	OutcomeFailed:     "failed",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Resolution is the result for one detected region.
type Resolution struct {
	Region  image.Rectangle
	Name    string // empty for unknown faces
	Outcome Outcome
	// Distance to the chosen identity, or to the nearest one for unknown faces.
	Distance float64
	// Remaining cooldown for suppressed faces.
	Remaining time.Duration
	// Err is the ledger error for failed resolutions.
	Err error
}

// FrameResult holds everything decided for one frame.
type FrameResult struct {
	Frame       image.Image
	Faces       []facematch.Face
	Resolutions []Resolution
	At          time.Time
}

// Regions returns the detected regions in detection order.
func (r FrameResult) Regions() []image.Rectangle {
	return facematch.Regions(r.Faces)
}
