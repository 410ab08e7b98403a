package facematch

import (
	"context"
	"image"
)

// Face is one detected face: its region in frame coordinates and its embedding.
type Face struct {
	Region    image.Rectangle
	Embedding Embedding
	Score     float64
}

// Regions returns the regions of faces in detection order.
func Regions(faces []Face) []image.Rectangle {
	regions := make([]image.Rectangle, len(faces))
	for i, f := range faces {
		regions[i] = f.Region
	}
	return regions
}

// Detector finds faces and computes their embeddings. It is the boundary to the
// external encoder, implemented by faceapi.Client.
type Detector interface {
	DetectFaces(ctx context.Context, img image.Image) ([]Face, error)
}
