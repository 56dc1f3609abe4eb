package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// GeminiProvider talks to the Gemini API: a text model for extraction and
// Imagen for pictures.
type GeminiProvider struct {
	client       *genai.Client
	extractModel string
	imageModel   string
}

// NewGeminiProvider creates a Gemini client from cfg.
func NewGeminiProvider(ctx context.Context, cfg config.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p := &GeminiProvider{
		client:       client,
		extractModel: cfg.ExtractModel,
		imageModel:   cfg.ImageModel,
	}
	if p.extractModel == "" {
		p.extractModel = config.GeminiExtractModel
	}
	if p.imageModel == "" {
		p.imageModel = config.GeminiImageModel
	}

	return p, nil
}

// Name returns the provider name with its image model.
func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("gemini:%s", p.imageModel)
}

// ExtractSeries asks the text model for the heart-rate column as a JSON
// array, constrained by a response schema.
func (p *GeminiProvider) ExtractSeries(ctx context.Context, csvText string) (heartrate.Series, error) {
	resp, err := p.client.Models.GenerateContent(ctx,
		p.extractModel,
		genai.Text(extractionPrompt(csvText)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeNumber},
			},
		},
	)
	if err != nil {
		return nil, classify("failed to analyze CSV file", err)
	}

	series, err := parseSeries(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to analyze CSV file: %w", err)
	}
	return series, nil
}

// GenerateImage renders one square JPEG with Imagen.
func (p *GeminiProvider) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := p.client.Models.GenerateImages(ctx,
		p.imageModel,
		prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
			OutputMIMEType: config.ImageMIMEType,
			AspectRatio:    config.ImageAspectRatio,
		},
	)
	if err != nil {
		return nil, classify("image generation failed", err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return nil, ErrNoImage
	}

	mime := generated.Image.MIMEType
	if mime == "" {
		mime = config.ImageMIMEType
	}
	return &Image{Data: generated.Image.ImageBytes, MIMEType: mime}, nil
}
