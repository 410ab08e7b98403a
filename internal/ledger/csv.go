package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var csvHeader = []string{"Name", "Date", "Time"}

// CSV appends records to a CSV file with a Name,Date,Time header.
type CSV struct {
	path string
	mu   sync.Mutex
}

// OpenCSV creates the file with a header row if it does not exist yet.
func OpenCSV(path string) (*CSV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat ledger file: %w", err)
	}
	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("writing ledger header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("writing ledger header: %w", err)
		}
	}

	return &CSV{path: path}, nil
}

// Path returns the ledger file path.
func (c *CSV) Path() string {
	return c.path
}

// Append writes one row. The file is opened per call so external rotation or
// editing between sightings is picked up.
func (c *CSV) Append(_ context.Context, rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.Name, rec.Date, rec.Time}); err != nil {
		f.Close()
		return fmt.Errorf("writing ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing ledger row: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing ledger file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing ledger file: %w", err)
	}
	return nil
}

// Close is a no-op, the file is not held open between appends.
func (c *CSV) Close() error {
	return nil
}
