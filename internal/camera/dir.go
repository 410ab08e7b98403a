package camera

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dir replays the images of a directory in lexical order, which is handy for
// running the loop without a camera.
type Dir struct {
	files []string
	next  int
	loop  bool
	pacer pacer
}

// OpenDir lists the images in dir. It fails when there are none.
func OpenDir(dir string, interval time.Duration, loop bool) (*Dir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			if !e.IsDir() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images in %s: %w", dir, ErrNoFrame)
	}
	sort.Strings(files)
	return &Dir{files: files, loop: loop, pacer: pacer{interval: interval}}, nil
}

// Read returns the next image, or io.EOF after the last one unless looping.
func (d *Dir) Read(ctx context.Context) (image.Image, error) {
	if d.next >= len(d.files) {
		if !d.loop {
			return nil, io.EOF
		}
		d.next = 0
	}
	if err := d.pacer.wait(ctx); err != nil {
		return nil, err
	}

	path := d.files[d.next]
	d.next++

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (d *Dir) Close() error {
	return nil
}
