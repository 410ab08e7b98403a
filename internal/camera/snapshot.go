package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxSnapshotSize limits a single snapshot download.
const maxSnapshotSize = 32 << 20

// Snapshot fetches a still image from an HTTP endpoint on every Read,
// as offered by most IP cameras.
type Snapshot struct {
	url    string
	client *http.Client
	pacer  pacer
}

// NewSnapshot creates a snapshot source. Reads are spaced at least interval apart.
func NewSnapshot(url string, timeout, interval time.Duration) *Snapshot {
	return &Snapshot{
		url:    url,
		client: &http.Client{Timeout: timeout},
		pacer:  pacer{interval: interval},
	}
}

// Read downloads and decodes one snapshot.
func (s *Snapshot) Read(ctx context.Context) (image.Image, error) {
	if err := s.pacer.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not fetch snapshot: %w", ErrNoFrame, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: snapshot request failed with status %d: %s", ErrNoFrame, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrNoFrame
	}
	return img, nil
}

// Close releases idle connections.
func (s *Snapshot) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
