package cmd

import (
	"testing"

	"github.com/kozaktomas/face-attendance/internal/config"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("FACE_DISTANCE_THRESHOLD", "")
	t.Setenv("ATTENDANCE_COOLDOWN", "")
	t.Setenv("DISPLAY_HEADLESS", "")
	return config.Load()
}
