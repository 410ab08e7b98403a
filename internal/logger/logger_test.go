package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.log")

	log, err := New("prod", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.With("component", "test").Info("attendance marked", "name", "Alice")
	log.Debug("below file level")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"attendance marked"`) {
		t.Errorf("expected message in log file, got %q", content)
	}
	if !strings.Contains(content, `"name":"Alice"`) {
		t.Errorf("expected key/value in log file, got %q", content)
	}
	if strings.Contains(content, "below file level") {
		t.Error("debug entries should not reach the file")
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	// Must not panic
	log.Info("ignored", "k", "v")
	log.With("a", 1).Error("ignored")
	log.Sync()
}
