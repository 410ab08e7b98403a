package gallery

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// ErrInvalidKey is returned when a name yields no usable file key.
var ErrInvalidKey = errors.New("name does not produce a valid enrollment key")

// Store is the enrollment directory. A file name minus extension is the identity.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the enrollment directory.
func (s *Store) Dir() string {
	return s.dir
}

// Ensure creates the directory if it does not exist and reports whether it did.
func (s *Store) Ensure() (bool, error) {
	if _, err := os.Stat(s.dir); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat enrollment directory: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("creating enrollment directory: %w", err)
	}
	return true, nil
}

// Save writes img as <key>.jpg, replacing any image stored under the same key.
// The write goes through a temporary file so a concurrent load never sees a partial image.
func (s *Store) Save(name string, img image.Image) (string, error) {
	key := facematch.NameKey(name)
	if key == "" {
		return "", ErrInvalidKey
	}
	if _, err := s.Ensure(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".enroll-*.jpg")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: constants.EnrollmentJPEGQuality}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encoding enrollment image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temporary file: %w", err)
	}

	target := filepath.Join(s.dir, key+".jpg")
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("storing enrollment image: %w", err)
	}
	if err := s.removeSiblings(key, target); err != nil {
		return "", err
	}
	return target, nil
}

// removeSiblings deletes images that map to key but are not target (e.g. key.png).
func (s *Store) removeSiblings(key, target string) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading enrollment directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) || IdentityName(e.Name()) != key {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if path == target {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing previous enrollment %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Names lists the identities present in the store, sorted.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading enrollment directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) || e.Name()[0] == '.' {
			continue
		}
		names = append(names, IdentityName(e.Name()))
	}
	sort.Strings(names)
	return names, nil
}
