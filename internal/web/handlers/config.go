package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/config"
)

// ConfigHandler exposes the effective, non-secret configuration.
type ConfigHandler struct {
	config *config.Config
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	KnownFacesDir     string  `json:"known_faces_dir"`
	LedgerDriver      string  `json:"ledger_driver"`
	LedgerFile        string  `json:"ledger_file,omitempty"`
	EmbeddingURL      string  `json:"embedding_url"`
	CooldownSeconds   float64 `json:"cooldown_seconds"`
	DistanceThreshold float64 `json:"distance_threshold"`
	CameraSource      string  `json:"camera_source"`
}

// cameraSource describes which frame source the configuration selects.
func cameraSource(c *config.CameraConfig) string {
	switch {
	case c.FramesDir != "":
		return "dir:" + c.FramesDir
	case c.SnapshotURL != "":
		return "snapshot"
	default:
		return "device:" + c.Device
	}
}

// Get returns the configuration. Database URLs and tokens are never included.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := ConfigResponse{
		KnownFacesDir:     h.config.Store.KnownFacesDir,
		LedgerDriver:      h.config.Ledger.Driver,
		EmbeddingURL:      h.config.Embedding.URL,
		CooldownSeconds:   h.config.Recognition.Cooldown.Seconds(),
		DistanceThreshold: h.config.Recognition.DistanceThreshold,
		CameraSource:      cameraSource(&h.config.Camera),
	}
	if h.config.Ledger.Driver == "csv" {
		resp.LedgerFile = h.config.Ledger.File
	}
	respondJSON(w, http.StatusOK, resp)
}
