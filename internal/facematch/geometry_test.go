package facematch

import (
	"image"
	"testing"
)

func TestBBoxToRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	tests := []struct {
		name     string
		bbox     []float64
		expected image.Rectangle
	}{
		{
			name:     "inside frame",
			bbox:     []float64{100, 50, 200.4, 180.6},
			expected: image.Rect(100, 50, 200, 181),
		},
		{
			name:     "clamped to frame",
			bbox:     []float64{-20, -10, 700, 500},
			expected: image.Rect(0, 0, 640, 480),
		},
		{
			name:     "invalid bbox",
			bbox:     []float64{100, 200},
			expected: image.Rectangle{},
		},
		{
			name:     "outside frame",
			bbox:     []float64{700, 500, 800, 600},
			expected: image.Rectangle{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BBoxToRegion(tt.bbox, bounds)
			if !result.Eq(tt.expected) {
				t.Errorf("BBoxToRegion(%v) = %v, want %v", tt.bbox, result, tt.expected)
			}
		})
	}
}

func TestScaleRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 3840, 2160)

	result := ScaleRegion(image.Rect(100, 100, 200, 300), 2, bounds)
	if !result.Eq(image.Rect(200, 200, 400, 600)) {
		t.Errorf("ScaleRegion() = %v, want (200,200)-(400,600)", result)
	}

	same := ScaleRegion(image.Rect(10, 10, 20, 20), 1, bounds)
	if !same.Eq(image.Rect(10, 10, 20, 20)) {
		t.Errorf("ScaleRegion() with scale 1 = %v", same)
	}
}

func TestMostProminent(t *testing.T) {
	tests := []struct {
		name     string
		regions  []image.Rectangle
		expected int
	}{
		{"no regions", nil, -1},
		{"only empty regions", []image.Rectangle{{}}, -1},
		{"single", []image.Rectangle{image.Rect(0, 0, 10, 10)}, 0},
		{"largest wins", []image.Rectangle{image.Rect(0, 0, 10, 10), image.Rect(0, 0, 30, 30)}, 1},
		{"first on tie", []image.Rectangle{image.Rect(0, 0, 20, 20), image.Rect(50, 50, 70, 70)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MostProminent(tt.regions); got != tt.expected {
				t.Errorf("MostProminent() = %d, want %d", got, tt.expected)
			}
		})
	}
}
