package facematch

import "image"

// BBoxToRegion converts a pixel bbox [x1, y1, x2, y2] as reported by the embedding
// server into a region clamped to bounds. Returns an empty rectangle for malformed input.
func BBoxToRegion(bbox []float64, bounds image.Rectangle) image.Rectangle {
	if len(bbox) != 4 {
		return image.Rectangle{}
	}
	r := image.Rect(int(bbox[0]), int(bbox[1]), int(bbox[2]+0.5), int(bbox[3]+0.5))
	return r.Intersect(bounds)
}

// ScaleRegion maps a region detected on a zero-origin resized copy back to the
// original image. scale is original size divided by resized size.
func ScaleRegion(r image.Rectangle, scale float64, bounds image.Rectangle) image.Rectangle {
	if scale == 1 {
		return r.Add(bounds.Min).Intersect(bounds)
	}
	scaled := image.Rect(
		int(float64(r.Min.X)*scale),
		int(float64(r.Min.Y)*scale),
		int(float64(r.Max.X)*scale+0.5),
		int(float64(r.Max.Y)*scale+0.5),
	)
	return scaled.Add(bounds.Min).Intersect(bounds)
}

// MostProminent returns the index of the largest region, the first one on ties.
// Returns -1 when there is no non-empty region.
func MostProminent(regions []image.Rectangle) int {
	best := -1
	bestArea := 0
	for i, r := range regions {
		if a := area(r); a > bestArea {
			best = i
			bestArea = a
		}
	}
	return best
}

func area(r image.Rectangle) int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}
