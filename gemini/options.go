package gemini

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
	DefaultTopP        = 0.9
	DefaultTopK        = 40
)

type SafetySetting struct {
	Category  string
	Threshold string
}

// GenerationOptions - параметры одного вызова. Собираются из DefaultGenerationOptions
// и Option-ов, переданных в вызов.
type GenerationOptions struct {
	Temperature       float64
	MaxTokens         int
	TopP              float64
	TopK              int
	SafetySettings    []SafetySetting
	SystemInstruction string // только для Chat
	Moderate          bool
}

func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
		TopK:        DefaultTopK,
	}
}

type Option func(*GenerationOptions)

func WithTemperature(t float64) Option {
	return func(o *GenerationOptions) { o.Temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(o *GenerationOptions) { o.MaxTokens = n }
}

func WithTopP(p float64) Option {
	return func(o *GenerationOptions) { o.TopP = p }
}

func WithTopK(k int) Option {
	return func(o *GenerationOptions) { o.TopK = k }
}

func WithSafetySettings(settings ...SafetySetting) Option {
	return func(o *GenerationOptions) {
		o.SafetySettings = append([]SafetySetting(nil), settings...)
	}
}

func WithSystemInstruction(text string) Option {
	return func(o *GenerationOptions) { o.SystemInstruction = text }
}

func WithModeration() Option {
	return func(o *GenerationOptions) { o.Moderate = true }
}

func resolveOptions(opts []Option) GenerationOptions {
	o := DefaultGenerationOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
