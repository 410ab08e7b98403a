// Package faceapi is a client for an InsightFace-compatible embedding server.
// The server detects faces in an uploaded image and returns a bounding box and
// an embedding for each of them.
package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// Client computes face embeddings using the embedding server
type Client struct {
	baseURL string
	client  *http.Client
	maxSize int
}

// NewClient creates a new embedding client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultEmbeddingURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		maxSize: constants.MaxImageSize,
	}
}

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float64 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage constructs a multipart form with the image data and posts it to the given endpoint.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	return "application/octet-stream"
}

// ComputeFaceEmbeddings detects faces in encoded image data and computes their embeddings
func (c *Client) ComputeFaceEmbeddings(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &faceResp, nil
}

// DetectFaces encodes img as RGB JPEG, sends it to the server and returns the faces
// in detection order with regions in img coordinates. Faces without an embedding or
// with an empty region are dropped.
func (c *Client) DetectFaces(ctx context.Context, img image.Image) ([]facematch.Face, error) {
	data, sent, scale, err := c.encodeFrame(img)
	if err != nil {
		return nil, err
	}

	resp, err := c.ComputeFaceEmbeddings(ctx, data)
	if err != nil {
		return nil, err
	}

	faces := make([]facematch.Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.Embedding) == 0 {
			continue
		}
		region := facematch.ScaleRegion(facematch.BBoxToRegion(f.BBox, sent), scale, img.Bounds())
		if region.Empty() {
			continue
		}
		faces = append(faces, facematch.Face{
			Region:    region,
			Embedding: f.Embedding,
			Score:     f.DetScore,
		})
	}
	return faces, nil
}

// encodeFrame downsizes img to fit maxSize and encodes it as JPEG.
// Returns the bounds of the encoded image and the factor to map its coordinates back to img.
func (c *Client) encodeFrame(img image.Image) ([]byte, image.Rectangle, float64, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, image.Rectangle{}, 0, fmt.Errorf("empty frame")
	}

	scale := 1.0
	src := img
	if width > c.maxSize || height > c.maxSize {
		var newWidth, newHeight int
		if width > height {
			newWidth = c.maxSize
			newHeight = int(float64(height) * float64(c.maxSize) / float64(width))
		} else {
			newHeight = c.maxSize
			newWidth = int(float64(width) * float64(c.maxSize) / float64(height))
		}
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		src = resized
		scale = float64(width) / float64(newWidth)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}); err != nil {
		return nil, image.Rectangle{}, 0, fmt.Errorf("failed to encode frame: %w", err)
	}
	sent := src.Bounds()
	return buf.Bytes(), sent.Sub(sent.Min), scale, nil
}
