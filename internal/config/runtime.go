package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted after the config file is read
const (
	EnvProvider     = "HEARTBEATSART_PROVIDER"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds runtime settings. It is read from a YAML file, then
// environment overrides are applied, then CLI flags via Override.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Generate GenerateConfig `yaml:"generate"`
	Card     CardConfig     `yaml:"card"`
	Log      LogConfig      `yaml:"log"`
}

// ProviderConfig selects and configures the hosted AI service.
type ProviderConfig struct {
	// Name is one of gemini, openai or mock.
	Name string `yaml:"name"`

	// APIKey for the selected provider. Usually left empty in the file
	// and supplied through the environment.
	APIKey string `yaml:"api_key"`

	// BaseURL points the openai provider at a compatible gateway.
	BaseURL string `yaml:"base_url"`

	ExtractModel string `yaml:"extract_model"`
	ImageModel   string `yaml:"image_model"`

	ExtractTimeout time.Duration `yaml:"extract_timeout"`
	ImageTimeout   time.Duration `yaml:"image_timeout"`
}

// GenerateConfig holds defaults for a generation run.
type GenerateConfig struct {
	Color   string `yaml:"color"`
	Extract string `yaml:"extract"`
	Last    int    `yaml:"last"`
}

// CardConfig customises the rendered card.
type CardConfig struct {
	Title     string `yaml:"title"`
	TextColor string `yaml:"text_color"`
}

// LogConfig controls the structured log.
type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
}

// Overrides carries CLI flag values. Empty fields leave the config untouched.
type Overrides struct {
	Provider string
	Color    string
	Extract  string
	Last     int
	Verbose  bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:           DefaultProvider,
			ExtractTimeout: DefaultExtractTimeout,
			ImageTimeout:   DefaultImageTimeout,
		},
		Generate: GenerateConfig{
			Color:   "Blue",
			Extract: ExtractLocal,
		},
		Card: CardConfig{
			Title: CardTitle,
		},
		Log: LogConfig{
			Level:  "warn",
			Output: "stderr",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillModelDefaults()

	return cfg, nil
}

// applyEnvOverrides lets the environment pick the provider and supply its key.
func (c *Config) applyEnvOverrides() {
	if name := strings.TrimSpace(os.Getenv(EnvProvider)); name != "" {
		c.Provider.Name = strings.ToLower(name)
	}
	if key := envAPIKey(c.Provider.Name); key != "" {
		c.Provider.APIKey = key
	}
}

// envAPIKey returns the key the environment holds for provider, if any.
// GEMINI_API_KEY takes precedence over GOOGLE_API_KEY.
func envAPIKey(provider string) string {
	switch provider {
	case ProviderGemini:
		if key := os.Getenv(EnvGeminiAPIKey); key != "" {
			return key
		}
		return os.Getenv(EnvGoogleAPIKey)
	case ProviderOpenAI:
		return os.Getenv(EnvOpenAIAPIKey)
	}
	return ""
}

// fillModelDefaults sets per-provider model names the file left empty.
func (c *Config) fillModelDefaults() {
	switch c.Provider.Name {
	case ProviderGemini:
		if c.Provider.ExtractModel == "" {
			c.Provider.ExtractModel = GeminiExtractModel
		}
		if c.Provider.ImageModel == "" {
			c.Provider.ImageModel = GeminiImageModel
		}
	case ProviderOpenAI:
		if c.Provider.ExtractModel == "" {
			c.Provider.ExtractModel = OpenAIExtractModel
		}
		if c.Provider.ImageModel == "" {
			c.Provider.ImageModel = OpenAIImageModel
		}
	}
}

// Override applies CLI flags. Switching provider drops a key and model
// names that belonged to the previous one.
func (c *Config) Override(o Overrides) {
	if o.Provider != "" && !strings.EqualFold(o.Provider, c.Provider.Name) {
		c.Provider.Name = strings.ToLower(o.Provider)
		c.Provider.APIKey = envAPIKey(c.Provider.Name)
		c.Provider.ExtractModel = ""
		c.Provider.ImageModel = ""
		c.fillModelDefaults()
	}
	if o.Color != "" {
		c.Generate.Color = o.Color
	}
	if o.Extract != "" {
		c.Generate.Extract = strings.ToLower(o.Extract)
	}
	if o.Last > 0 {
		c.Generate.Last = o.Last
	}
	if o.Verbose {
		c.Log.Level = "debug"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderGemini, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q (want gemini, openai or mock)", c.Provider.Name)
	}

	switch c.Generate.Extract {
	case ExtractLocal, ExtractAI:
	default:
		return fmt.Errorf("unknown extract mode %q (want local or ai)", c.Generate.Extract)
	}

	if c.Generate.Last < 0 {
		return fmt.Errorf("last must not be negative, got %d", c.Generate.Last)
	}
	if c.Provider.ExtractTimeout <= 0 {
		return errors.New("provider.extract_timeout must be positive")
	}
	if c.Provider.ImageTimeout <= 0 {
		return errors.New("provider.image_timeout must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	if c.Card.TextColor != "" {
		if _, _, _, err := ParseHexColor(c.Card.TextColor); err != nil {
			return fmt.Errorf("card.text_color: %w", err)
		}
	}

	return nil
}

// GetTextColor returns the caption text colour, falling back to the
// built-in default when unset or malformed.
func (c CardConfig) GetTextColor() (uint8, uint8, uint8) {
	if c.TextColor == "" {
		return TextColorR, TextColorG, TextColorB
	}
	r, g, b, err := ParseHexColor(c.TextColor)
	if err != nil {
		return TextColorR, TextColorG, TextColorB
	}
	return r, g, b
}

// GetTitle returns the card title or the default.
func (c CardConfig) GetTitle() string {
	if strings.TrimSpace(c.Title) == "" {
		return CardTitle
	}
	return c.Title
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB".
func ParseHexColor(s string) (uint8, uint8, uint8, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: want 6 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
