package config

import "time"

// Prompt band thresholds
// Each value is the exclusive upper bound of its band; anything at or above
// the last bound falls into the top band.
const (
	EnergyLowMax     = 75.0  // mean BPM below this reads as calm
	EnergyMidMax     = 110.0 // mean BPM below this reads as balanced
	VolatilityLowMax = 5.0   // population std-dev below this reads as smooth
	VolatilityMidMax = 15.0
	RangeSmallMax    = 20.0 // max-min spread below this reads as subtle
)

// AI provider settings
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"

	DefaultProvider = ProviderGemini

	GeminiExtractModel = "gemini-2.5-flash"
	GeminiImageModel   = "imagen-4.0-generate-001"
	OpenAIExtractModel = "gpt-4o-mini"
	OpenAIImageModel   = "gpt-image-1"

	ImageAspectRatio = "1:1"
	ImageMIMEType    = "image/jpeg"

	// The AI extractor only ever returns the most recent samples
	ExtractTailSize = 60

	DefaultExtractTimeout = 30 * time.Second
	DefaultImageTimeout   = 60 * time.Second
)

// Extraction modes
const (
	ExtractLocal = "local" // deterministic CSV parse, exact "BPM" header
	ExtractAI    = "ai"    // provider-backed, fuzzy column detection
)

// Card settings
const (
	CardSize          = 1024 // Square card, matching the 1:1 image aspect
	CaptionHeight     = 168  // Height of the coloured caption strip under the image
	CardMargin        = 36   // Left/right margin in pixels for caption text
	CardTitleFontSize = 44.0
	CardStatsFontSize = 22.0
	CardTitle         = "Heart Beats Art"
)

// Pulse track settings
const (
	PulseSampleRate = 44100
	PulseBitDepth   = 16
	PulseLubHz      = 48.0  // First heart sound, low thump
	PulseDubHz      = 72.0  // Second heart sound, shorter and higher
	PulseLubLength  = 0.11  // seconds
	PulseDubLength  = 0.08  // seconds
	PulseDubOffset  = 0.28  // fraction of the beat interval where "dub" starts
	PulseAmplitude  = 0.8
	PulseMinBPM     = 30.0  // slower samples are played at this rate
	PulseMaxBPM     = 220.0 // faster samples are played at this rate
	PulseMaxBeats   = 3600  // most recent samples kept; stays under the 4 GiB WAV limit
)

// Appearance - caption styling
// Note: text colour can be overridden from the config file (card.text_color).
const (
	// Caption text colour, warm white
	TextColorR = 250
	TextColorG = 246
	TextColorB = 240

	// Caption strip darkening applied over the chosen colour swatch (0-255 alpha)
	CaptionShadeAlpha = 72
)
