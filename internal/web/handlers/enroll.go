package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/enroll"
	"github.com/kozaktomas/face-attendance/internal/logger"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// CommandQueue accepts enrollment commands for the recognition loop.
type CommandQueue interface {
	Submit(cmd recognition.Command) error
}

// EnrollHandler enrolls the most prominent face of the latest frame.
type EnrollHandler struct {
	queue   CommandQueue
	log     *logger.Logger
	timeout time.Duration
}

func NewEnrollHandler(queue CommandQueue, log *logger.Logger) *EnrollHandler {
	return &EnrollHandler{queue: queue, log: log, timeout: constants.EnrollReplyTimeout}
}

// EnrollRequest is the body of POST /enroll.
type EnrollRequest struct {
	Name string `json:"name"`
}

// EnrollResponse describes a stored enrollment.
type EnrollResponse struct {
	Name       string `json:"name"`
	File       string `json:"file"`
	Identities int    `json:"identities"`
}

// Create queues an enrollment and waits for the loop to process it.
func (h *EnrollHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.MaxRequestBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, enroll.ErrEmptyName.Error())
		return
	}

	reply := make(chan recognition.CommandResult, 1)
	if err := h.queue.Submit(recognition.Command{Name: req.Name, Reply: reply}); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.log.Info("Enrollment requested over HTTP", "name", sanitizeForLog(req.Name))

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case res := <-reply:
		h.respondResult(w, res)
	case <-timer.C:
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	case <-r.Context().Done():
	}
}

func (h *EnrollHandler) respondResult(w http.ResponseWriter, res recognition.CommandResult) {
	switch {
	case errors.Is(res.Err, enroll.ErrEmptyName):
		respondError(w, http.StatusBadRequest, res.Err.Error())
	case errors.Is(res.Err, enroll.ErrNoFace), errors.Is(res.Err, enroll.ErrNotEncoded):
		respondError(w, http.StatusUnprocessableEntity, res.Err.Error())
	case res.Err != nil:
		respondError(w, http.StatusInternalServerError, "enrollment failed")
	default:
		respondJSON(w, http.StatusCreated, EnrollResponse{
			Name:       res.Result.Name,
			File:       filepath.Base(res.Result.Path),
			Identities: res.Result.Identities,
		})
	}
}
