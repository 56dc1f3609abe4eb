// Package provider abstracts the hosted AI services behind the two
// capabilities the generator needs: pulling a BPM series out of arbitrary
// CSV text, and turning a prompt into an image.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// Provider errors. Messages are shown to the user verbatim.
var (
	ErrMissingAPIKey     = errors.New("API Key is not configured.")
	ErrInvalidAPIKey     = errors.New("Your API Key is invalid. Please check and re-enter it.")
	ErrInvalidExtraction = errors.New("AI model did not return a valid array of numbers.")
	ErrNoExtractedData   = errors.New("No BPM data could be extracted from the file.")
	ErrNoImage           = errors.New("Image generation failed. No images were returned.")
)

// Image is a generated picture in its encoded form.
type Image struct {
	Data     []byte
	MIMEType string
}

// Extension returns a file extension matching the image encoding.
func (img *Image) Extension() string {
	switch img.MIMEType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// SeriesExtractor finds the heart-rate column in CSV text of unknown shape
// and returns at most its last config.ExtractTailSize values.
type SeriesExtractor interface {
	ExtractSeries(ctx context.Context, csvText string) (heartrate.Series, error)
}

// ImageGenerator produces one square image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// Provider is a hosted service offering both capabilities.
type Provider interface {
	SeriesExtractor
	ImageGenerator
	Name() string
}

// New builds the provider named in cfg.
func New(cfg config.ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case config.ProviderGemini:
		return NewGeminiProvider(context.Background(), cfg)
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case config.ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

// extractionPrompt asks the model for a bare JSON array of numbers.
func extractionPrompt(csvText string) string {
	return fmt.Sprintf(`You are an expert data analyst. Analyze the CSV content below, identify the column that holds heart rate data (BPM or beats per minute) and extract the last %[1]d numerical values from that column. The column might not be labeled "BPM"; use your best judgment to find the most likely one (e.g. "heart_rate", "value"). If there are fewer than %[1]d data points, return all of them. The output must be a clean JSON array of numbers with no other text or explanation.

CSV content:
---
%[2]s
---
`, config.ExtractTailSize, csvText)
}

// classify maps a provider failure onto the user-facing errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if strings.Contains(err.Error(), "API key not valid") {
		return ErrInvalidAPIKey
	}
	return fmt.Errorf("%s: %w", op, err)
}
