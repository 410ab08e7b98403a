package gallery

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/logger"
)

var supportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
}

// IsSupported reports whether a file name has an enrollment image extension (case-insensitive).
func IsSupported(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IdentityName returns the identity of an enrollment file: its base name minus extension.
func IdentityName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Loader builds galleries from an enrollment directory.
type Loader struct {
	Dir      string
	Detector facematch.Detector
	Log      *logger.Logger
	// Progress is called after each image when set.
	Progress func(done, total int)
}

// Load scans the directory and encodes every supported image, keeping the first
// detected face. Images without a face or that cannot be decoded are skipped with a
// warning. Detector failures abort the load so a caller never swaps in a partial gallery.
func (l *Loader) Load(ctx context.Context) (*Gallery, error) {
	log := l.Log
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating enrollment directory: %w", err)
	}

	dirEntries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading enrollment directory: %w", err)
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") || !IsSupported(de.Name()) {
			continue
		}
		files = append(files, de.Name())
	}

	entries := make([]Entry, 0, len(files))
	seen := make(map[string]string, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, ok, err := l.loadOne(ctx, log, file, seen)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
			seen[entry.Name] = file
		}
		if l.Progress != nil {
			l.Progress(i+1, len(files))
		}
	}

	return New(entries), nil
}

func (l *Loader) loadOne(ctx context.Context, log *logger.Logger, file string, seen map[string]string) (Entry, bool, error) {
	name := IdentityName(file)
	if prev, dup := seen[name]; dup {
		log.Warn("Duplicate identity in enrollment store, skipping", "file", file, "kept", prev)
		return Entry{}, false, nil
	}

	path := filepath.Join(l.Dir, file)
	img, err := decodeFile(path)
	if err != nil {
		log.Warn("Cannot decode enrollment image, skipping", "file", file, "error", err)
		return Entry{}, false, nil
	}

	faces, err := l.Detector.DetectFaces(ctx, img)
	if err != nil {
		return Entry{}, false, fmt.Errorf("encoding %s: %w", file, err)
	}
	if len(faces) == 0 {
		log.Warn("No face found in enrollment image, skipping", "file", file)
		return Entry{}, false, nil
	}

	return Entry{Name: name, Embedding: faces[0].Embedding, Path: path}, true, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
