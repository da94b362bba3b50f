package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default per-call timeouts. Generation is by far the slowest call.
const (
	generateTimeout = 120 * time.Second
	removeTimeout   = 60 * time.Second
	segmentTimeout  = 60 * time.Second
)

// HTTPBackend talks JSON over HTTP to an inference server exposing one
// endpoint per collaborator call.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend creates a backend for the given server base URL.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type removeRequest struct {
	Image []byte `json:"image"`
}

type segmentRequest struct {
	Image []byte     `json:"image"`
	Box   [4]float64 `json:"box"` // [xmin, ymin, xmax, ymax]
}

type imageResponse struct {
	Image []byte `json:"image"`
	Error string `json:"error,omitempty"`
}

type segmentResponse struct {
	Mask   []byte  `json:"mask"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	Error  string  `json:"error,omitempty"`
}

// Generate produces an encoded raster from a text prompt.
func (b *HTTPBackend) Generate(ctx context.Context, prompt string) ([]byte, error) {
	var resp imageResponse
	if err := b.post(ctx, "/v1/generate", generateRequest{Prompt: prompt}, &resp, generateTimeout); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("generate: %s", resp.Error)
	}
	return resp.Image, nil
}

// RemoveBackground returns the raster with its background replaced by white.
func (b *HTTPBackend) RemoveBackground(ctx context.Context, encoded []byte) ([]byte, error) {
	var resp imageResponse
	if err := b.post(ctx, "/v1/remove-background", removeRequest{Image: encoded}, &resp, removeTimeout); err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("remove background: %s", resp.Error)
	}
	return resp.Image, nil
}

// Segment requests a foreground mask for the boxed region.
func (b *HTTPBackend) Segment(ctx context.Context, encoded []byte, box Box) (*SegmentResult, error) {
	req := segmentRequest{
		Image: encoded,
		Box:   [4]float64{box.XMin, box.YMin, box.XMax, box.YMax},
	}
	var resp segmentResponse
	if err := b.post(ctx, "/v1/segment", req, &resp, segmentTimeout); err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("segment: %s", resp.Error)
	}
	if len(resp.Mask) != resp.Width*resp.Height {
		return nil, fmt.Errorf("segment: mask is %d bytes for %dx%d", len(resp.Mask), resp.Width, resp.Height)
	}
	return &SegmentResult{
		Mask:   resp.Mask,
		Width:  resp.Width,
		Height: resp.Height,
		Scale:  resp.Scale,
	}, nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, in, out interface{}, timeout time.Duration) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s: %s", resp.Status, truncate(data, 200))
	}
	return json.Unmarshal(data, out)
}

func truncate(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	return string(data)
}
