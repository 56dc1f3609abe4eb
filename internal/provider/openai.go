package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/linuxmatters/heartbeatsart/internal/config"
	"github.com/linuxmatters/heartbeatsart/internal/heartrate"
)

// OpenAIProvider uses chat completions for extraction and the Images API
// for pictures. BaseURL lets it target any compatible gateway.
type OpenAIProvider struct {
	client       openai.Client
	extractModel string
	imageModel   string
}

// NewOpenAIProvider creates an OpenAI client from cfg.
func NewOpenAIProvider(cfg config.ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	p := &OpenAIProvider{
		client:       openai.NewClient(opts...),
		extractModel: cfg.ExtractModel,
		imageModel:   cfg.ImageModel,
	}
	if p.extractModel == "" {
		p.extractModel = config.OpenAIExtractModel
	}
	if p.imageModel == "" {
		p.imageModel = config.OpenAIImageModel
	}

	return p, nil
}

// Name returns the provider name with its image model.
func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("openai:%s", p.imageModel)
}

// ExtractSeries asks the chat model for the heart-rate column as a JSON array.
func (p *OpenAIProvider) ExtractSeries(ctx context.Context, csvText string) (heartrate.Series, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.extractModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Reply with a JSON array of numbers only."),
			openai.UserMessage(extractionPrompt(csvText)),
		},
	})
	if err != nil {
		return nil, p.classify("failed to analyze CSV file", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("failed to analyze CSV file: %w", ErrInvalidExtraction)
	}

	series, err := parseSeries(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze CSV file: %w", err)
	}
	return series, nil
}

// GenerateImage renders one square image. gpt-image models always answer
// with base64; dall-e models must be asked for it.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(p.imageModel),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	}
	if strings.HasPrefix(p.imageModel, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, p.classify("image generation failed", err)
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	return &Image{Data: data, MIMEType: http.DetectContentType(data)}, nil
}

// classify also treats HTTP 401 as a bad key, since OpenAI words it
// differently from Gemini.
func (p *OpenAIProvider) classify(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return ErrInvalidAPIKey
	}
	return classify(op, err)
}
