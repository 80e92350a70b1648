// Package leoflow provides a top-level convenience entry point for the
// Leonardo.Ai image generation client with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/leoflow"
//
//	client, err := leoflow.New()                           // key from LEONARDO_API_KEY
//	client, err := leoflow.New(leoflow.WithAPIKey("key"))
//
//	result, err := client.Generate(ctx, leonardo.GenerationRequest{
//	    Prompt: "a lighthouse at dusk",
//	}, time.Minute)
//
// Agent frameworks register the generation capability instead:
//
//	registry := tools.NewDefaultRegistry(logger)
//	err := leoflow.RegisterImageTool(registry, tools.DefaultImageGenerationConfig(), logger)
package leoflow

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/leoflow/leonardo"
	"github.com/BaSui01/leoflow/tools"
)

// Option configures the client created by [New].
type Option func(*options)

type options struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    leonardo.MetricsRecorder
}

// WithAPIKey sets the Leonardo API key. When absent, the LEONARDO_API_KEY
// environment variable is used.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithTimeout sets the per-request timeout for submission and account calls.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets a recorder for API call and workflow metrics.
func WithMetrics(m leonardo.MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a [leonardo.Client] with minimal configuration. Unlike tool
// registration, which silently skips when no credential exists, New requires
// one: a client without a key could never make a successful call.
func New(opts ...Option) (*leonardo.Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.apiKey == "" {
		o.apiKey = os.Getenv(tools.EnvAPIKey)
	}
	if o.apiKey == "" {
		return nil, fmt.Errorf("API key is required: set LEONARDO_API_KEY or use WithAPIKey")
	}

	return leonardo.NewClient(leonardo.Config{
		APIKey:     o.apiKey,
		BaseURL:    o.baseURL,
		Timeout:    o.timeout,
		HTTPClient: o.httpClient,
		Metrics:    o.metrics,
	}, o.logger), nil
}

// RegisterImageTool adds the image generation tool to the registry, skipping
// registration when no credential is available. See
// [tools.RegisterImageGenerationTool].
func RegisterImageTool(registry tools.ToolRegistry, cfg tools.ImageGenerationConfig, logger *zap.Logger) error {
	return tools.RegisterImageGenerationTool(registry, cfg, logger)
}
