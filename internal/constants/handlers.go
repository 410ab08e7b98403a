package constants

import "time"

// Operator API constants
const (
	// DefaultEventsLimit is the default page size of GET /api/v1/events
	DefaultEventsLimit = 50

	// MaxRequestBodySize limits JSON request bodies
	MaxRequestBodySize = 1 << 20

	// EnrollReplyTimeout is how long POST /api/v1/enroll waits for the loop
	EnrollReplyTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second
)
