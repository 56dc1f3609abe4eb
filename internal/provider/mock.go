package provider

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"slices"
	"sync"
	"time"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// mockSeries is a short resting-then-active trace.
var mockSeries = heartrate.Series{
	68, 70, 71, 69, 72, 74, 78, 83, 88, 94,
	101, 106, 104, 99, 93, 87, 82, 78, 75, 72,
}

// MockProvider is an offline Provider for local runs and tests. It never
// touches the network and records the prompts it was given.
type MockProvider struct {
	Series heartrate.Series
	Fill   color.RGBA
	Size   int

	// Injected failures and latency.
	ExtractErr error
	ImageErr   error
	ImageDelay time.Duration

	mu      sync.Mutex
	prompts []string
}

// NewMockProvider returns a mock with a built-in series and a muted fill.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Series: slices.Clone(mockSeries),
		Fill:   color.RGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
		Size:   256,
	}
}

// Name returns "mock".
func (m *MockProvider) Name() string { return config.ProviderMock }

// ExtractSeries ignores csvText and returns the tail of m.Series.
func (m *MockProvider) ExtractSeries(ctx context.Context, _ string) (heartrate.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	if len(m.Series) == 0 {
		return nil, ErrNoExtractedData
	}
	return heartrate.Tail(slices.Clone(m.Series), config.ExtractTailSize), nil
}

// GenerateImage returns a JPEG filled with m.Fill, brighter towards the
// centre, after waiting m.ImageDelay or until ctx is done.
func (m *MockProvider) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.ImageDelay > 0 {
		timer := time.NewTimer(m.ImageDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ImageErr != nil {
		return nil, m.ImageErr
	}

	size := m.Size
	if size <= 0 {
		size = 256
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, glow(size, m.Fill), &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding mock image: %w", err)
	}

	return &Image{Data: buf.Bytes(), MIMEType: config.ImageMIMEType}, nil
}

// Prompts returns the prompts received so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.prompts)
}

// glow fills a square with c, lifting pixels towards white near the centre.
func glow(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	centre := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - centre
			dy := float64(y) - centre
			t := 1 - (dx*dx+dy*dy)/(centre*centre)
			if t < 0 {
				t = 0
			}
			img.SetRGBA(x, y, color.RGBA{
				R: lift(c.R, t),
				G: lift(c.G, t),
				B: lift(c.B, t),
				A: 0xFF,
			})
		}
	}
	return img
}

func lift(v uint8, t float64) uint8 {
	return uint8(float64(v) + (255-float64(v))*t*0.6)
}
