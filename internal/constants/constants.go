// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Store constants
const (
	// DefaultKnownFacesDir is the enrollment store directory
	DefaultKnownFacesDir = "known_faces"

	// DefaultAttendanceFile is the CSV attendance ledger
	DefaultAttendanceFile = "attendance.csv"

	// EnrollmentJPEGQuality is used when saving cropped faces
	EnrollmentJPEGQuality = 95
)

// Face matching constants
const (
	// DefaultDistanceThreshold is the default maximum cosine distance for face matching
	// Lower values = stricter matching
	DefaultDistanceThreshold = 0.5

	// DefaultEmbeddingURL is the embedding server base URL
	DefaultEmbeddingURL = "http://localhost:8000"

	// MaxImageSize is the maximum dimension (width or height) sent to the embedding server
	MaxImageSize = 1920
)

// Attendance constants
const (
	// DefaultCooldown is the minimum interval between two counted sightings of one identity
	DefaultCooldown = time.Minute

	// DateLayout and TimeLayout format ledger rows from local wall clock
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Loop constants
const (
	// CommandQueueSize bounds pending enrollment commands
	CommandQueueSize = 8

	// HistorySize is the number of recent resolutions kept for the HTTP API
	HistorySize = 200

	// MaxEmptyFrames is how many consecutive ErrNoFrame reads the loop tolerates
	MaxEmptyFrames = 30
)

// Capture device constants
const (
	// WebcamWarmupReads bounds the reads spent waiting for a first frame when opening a device
	WebcamWarmupReads = 30

	// WebcamReadRetries is how often one Read retries an empty capture
	WebcamReadRetries = 3
)
