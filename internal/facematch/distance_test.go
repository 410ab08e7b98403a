package facematch

import (
	"math"
	"testing"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        Embedding
		b        Embedding
		expected float64
	}{
		{"identical vectors", Embedding{1, 0, 0}, Embedding{1, 0, 0}, 0},
		{"scaled vectors", Embedding{1, 2, 3}, Embedding{2, 4, 6}, 0},
		{"opposite vectors", Embedding{1, 0, 0}, Embedding{-1, 0, 0}, 2},
		{"orthogonal vectors", Embedding{1, 0, 0}, Embedding{0, 1, 0}, 1},
		{"similar vectors", Embedding{1, 1, 0}, Embedding{1, 0, 0}, 1 - 1/math.Sqrt2},
		{"empty vectors", Embedding{}, Embedding{}, 2},
		{"different lengths", Embedding{1, 0}, Embedding{1, 0, 0}, 2},
		{"zero vector", Embedding{0, 0, 0}, Embedding{1, 0, 0}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CosineDistance(tc.a, tc.b)
			if math.Abs(result-tc.expected) > 0.0001 {
				t.Errorf("CosineDistance(%v, %v) = %f; want %f", tc.a, tc.b, result, tc.expected)
			}
		})
	}
}
