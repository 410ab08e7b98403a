package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// EventSource exposes what the recognition loop decided recently.
type EventSource interface {
	Recent(limit int) []recognition.Event
	Stats() recognition.Stats
}

// EventsHandler serves recent events and loop statistics.
type EventsHandler struct {
	events    EventSource
	galleries GallerySource
	startedAt time.Time
}

func NewEventsHandler(events EventSource, galleries GallerySource, startedAt time.Time) *EventsHandler {
	return &EventsHandler{events: events, galleries: galleries, startedAt: startedAt}
}

// EventsResponse is a page of recent events, newest first.
type EventsResponse struct {
	Events []recognition.Event `json:"events"`
}

// List returns up to ?limit= events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultEventsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, constants.HistorySize)
	}

	events := h.events.Recent(limit)
	if events == nil {
		events = []recognition.Event{}
	}
	respondJSON(w, http.StatusOK, EventsResponse{Events: events})
}

// StatusResponse summarizes the running loop.
type StatusResponse struct {
	recognition.Stats
	Identities    int     `json:"identities"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Status returns loop counters and the gallery size.
func (h *EventsHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StatusResponse{
		Stats:         h.events.Stats(),
		Identities:    h.galleries.Current().Len(),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	})
}
