// Package gemini - синхронный клиент generateContent API Gemini:
// валидация, сборка запроса, пейсинг, ретраи на 429 и разбор ответа.
package gemini

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/gemini-go/config"
	"github.com/kitbuilder587/gemini-go/internal/clock"
	"github.com/kitbuilder587/gemini-go/internal/metrics"
	"github.com/kitbuilder587/gemini-go/internal/moderation"
	"github.com/kitbuilder587/gemini-go/internal/platform"
	"github.com/kitbuilder587/gemini-go/internal/ratelimit"
)

const (
	Version = "0.2.0"

	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1/models"
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	apiKey  string
	modelID string
	baseURL string
	header  string

	client  *http.Client
	logger  *zap.Logger
	clock   clock.Clock
	pacer   *ratelimit.Pacer
	filter  *moderation.Filter
	metrics *metrics.Metrics

	// настройки, которые применяются в New после опций
	model       Model
	minInterval *time.Duration
	lookupEnv   func(string) (string, bool)
}

type ClientOption func(*Client)

func WithModel(m Model) ClientOption {
	return func(c *Client) { c.model = m }
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient подменяет http.Client. Таймаут тогда на совести вызывающего.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

func WithClock(cl clock.Clock) ClientOption {
	return func(c *Client) {
		if cl != nil {
			c.clock = cl
		}
	}
}

// WithMinInterval фиксирует интервал пейсинга вместо определения по окружению
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.minInterval = &d }
}

// WithEnvLookup - источник переменных окружения для определения CI
func WithEnvLookup(lookup func(string) (string, bool)) ClientOption {
	return func(c *Client) {
		if lookup != nil {
			c.lookupEnv = lookup
		}
	}
}

func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) {
		if reg != nil {
			c.metrics = metrics.New(reg)
		}
	}
}

func New(apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		header:    platform.ClientHeader("gemini-go", Version),
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    zap.NewNop(),
		clock:     clock.Real(),
		filter:    moderation.New(),
		model:     DefaultModel,
		lookupEnv: os.LookupEnv,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("initializing client",
		zap.Bool("credential_present", apiKey != ""),
		zap.Int("credential_length", len(apiKey)),
	)

	if err := ValidateCredential(c.apiKey, c.logger); err != nil {
		return nil, err
	}

	c.modelID = ResolveModel(c.model, c.logger)

	interval := ratelimit.IntervalFromEnv(c.lookupEnv)
	if c.minInterval != nil {
		interval = *c.minInterval
	}
	c.pacer = ratelimit.New(ratelimit.Config{MinInterval: interval, Clock: c.clock})

	c.logger.Debug("client ready",
		zap.String("model", c.modelID),
		zap.Duration("min_interval", interval),
		zap.String("credential", MaskCredential(c.apiKey)),
	)

	return c, nil
}

// NewFromConfig собирает клиента из config.Config. Явные opts применяются последними.
func NewFromConfig(cfg *config.Config, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, newError(ErrInvalidRequest, "config is required")
	}

	base := []ClientOption{
		WithModel(Model(cfg.Model)),
		WithBaseURL(cfg.BaseURL),
		WithLogger(logger),
		WithEnvLookup(func(string) (string, bool) {
			if cfg.CI {
				return "true", true
			}
			return "", false
		}),
	}
	if cfg.Timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	return New(cfg.APIKey, append(base, opts...)...)
}

// Model - идентификатор модели, в который разрешился ключ
func (c *Client) Model() string {
	return c.modelID
}

func (c *Client) GenerateText(ctx context.Context, prompt string, opts ...Option) (string, error) {
	if err := ValidatePrompt(prompt); err != nil {
		c.logger.Error("invalid prompt", zap.Error(err))
		return "", err
	}

	o := resolveOptions(opts)
	return c.generate(ctx, c.modelID, newTextRequest(prompt, o), o)
}

func (c *Client) Chat(ctx context.Context, messages []ChatMessage, opts ...Option) (string, error) {
	if err := validateMessages(messages); err != nil {
		c.logger.Error("invalid chat messages", zap.Error(err))
		return "", err
	}

	o := resolveOptions(opts)
	return c.generate(ctx, c.modelID, newChatRequest(messages, o), o)
}

// GenerateImageText описывает JPEG-изображение. Такие запросы всегда идут в pro модель.
func (c *Client) GenerateImageText(ctx context.Context, image []byte, prompt string, opts ...Option) (string, error) {
	if err := validateImage(image); err != nil {
		c.logger.Error("invalid image", zap.Error(err))
		return "", err
	}
	if err := ValidatePrompt(prompt); err != nil {
		c.logger.Error("invalid prompt", zap.Error(err))
		return "", err
	}

	o := resolveOptions(opts)
	return c.generate(ctx, models[ModelPro], newImageRequest(image, prompt, o), o)
}

func (c *Client) generate(ctx context.Context, modelID string, req generateRequest, o GenerationOptions) (string, error) {
	logger := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("model", modelID),
	)

	text, err := c.send(ctx, logger, modelID, req)
	if err != nil {
		return "", err
	}

	if o.Moderate {
		text = c.moderate(logger, text)
	}
	return text, nil
}

func (c *Client) moderate(logger *zap.Logger, text string) string {
	moderated, findings := c.filter.Moderate(text)
	for _, f := range findings {
		logger.Warn(f.String(), zap.Int("matches", f.Matches))
		c.metrics.RecordRedactions(string(f.Category), f.Matches)
	}
	return moderated
}
