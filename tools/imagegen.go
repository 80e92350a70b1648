package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/leoflow/leonardo"
)

const (
	// ImageGenerationToolName is how the capability appears in tool listings.
	ImageGenerationToolName = "generate_image"

	// EnvAPIKey is the environment fallback consulted when no explicit
	// Leonardo credential is configured.
	EnvAPIKey = "LEONARDO_API_KEY"

	// DefaultPollTimeout bounds the wait for a generation to finish.
	DefaultPollTimeout = 60 * time.Second
)

// ImageGenerationConfig configures the image generation tool.
type ImageGenerationConfig struct {
	// Client is used when set; otherwise one is built from APIKey/BaseURL.
	Client *leonardo.Client

	APIKey      string
	BaseURL     string
	PollTimeout time.Duration

	Metrics leonardo.MetricsRecorder
}

// DefaultImageGenerationConfig returns the default tool configuration.
func DefaultImageGenerationConfig() ImageGenerationConfig {
	return ImageGenerationConfig{
		PollTimeout: DefaultPollTimeout,
	}
}

// imageGenArgs is the argument object callers pass to the tool.
type imageGenArgs struct {
	Prompt      string `json:"prompt"`
	NumImages   int    `json:"num_images,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	PresetStyle string `json:"preset_style,omitempty"`
}

// imageGenResult is the tool's result object. ImageURLs carries no omitempty
// so failures still serialize it as an empty array rather than null.
type imageGenResult struct {
	GenerationID string   `json:"generationId,omitempty"`
	ImageURLs    []string `json:"imageUrls"`
	Count        int      `json:"count,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// resolveAPIKey applies the credential precedence: explicit configuration
// first, environment second.
func resolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvAPIKey)
}

// NewImageGenerationTool creates the image generation tool function and its
// metadata. The returned function reports workflow failures inside the
// result object instead of as Go errors, so a failed generation never takes
// the calling agent down with it.
func NewImageGenerationTool(cfg ImageGenerationConfig, logger *zap.Logger) (ToolFunc, ToolMetadata) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}

	client := cfg.Client
	if client == nil {
		client = leonardo.NewClient(leonardo.Config{
			APIKey:  resolveAPIKey(cfg.APIKey),
			BaseURL: cfg.BaseURL,
			Metrics: cfg.Metrics,
		}, logger)
	}

	fn := func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
		log := logger.With(zap.String("invocation_id", uuid.NewString()))

		var params imageGenArgs
		if err := json.Unmarshal(args, &params); err != nil {
			log.Warn("invalid image generation arguments", zap.Error(err))
			return failureResult(fmt.Sprintf("invalid arguments: %v", err))
		}

		req := leonardo.GenerationRequest{
			Prompt:      params.Prompt,
			NumImages:   params.NumImages,
			Width:       params.Width,
			Height:      params.Height,
			PresetStyle: params.PresetStyle,
		}

		start := time.Now()
		log.Info("executing image generation",
			zap.String("prompt", params.Prompt),
			zap.Int("num_images", params.NumImages))

		result, err := client.Generate(ctx, req, cfg.PollTimeout)
		if err != nil {
			log.Error("image generation failed",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
			return failureResult(err.Error())
		}

		log.Info("image generation completed",
			zap.String("generation_id", result.GenerationID),
			zap.Int("images", len(result.ImageURLs)),
			zap.Duration("duration", time.Since(start)))

		return json.Marshal(imageGenResult{
			GenerationID: result.GenerationID,
			ImageURLs:    result.ImageURLs,
			Count:        len(result.ImageURLs),
		})
	}

	metadata := ToolMetadata{
		Schema: ToolSchema{
			Name:        ImageGenerationToolName,
			Description: "Generate images from a text prompt using Leonardo.Ai. Returns URLs of the generated images.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"prompt": {
						"type": "string",
						"description": "Text description of the image to generate"
					},
					"num_images": {
						"type": "integer",
						"description": "Number of images to generate (1-4, default 1)",
						"minimum": 1,
						"maximum": 4
					},
					"width": {
						"type": "integer",
						"description": "Image width in pixels (multiple of 8, max 1536, default 1024)"
					},
					"height": {
						"type": "integer",
						"description": "Image height in pixels (multiple of 8, max 1536, default 1024)"
					},
					"preset_style": {
						"type": "string",
						"description": "Visual style preset, e.g. DYNAMIC, CINEMATIC, ANIME (default DYNAMIC)"
					}
				},
				"required": ["prompt"]
			}`),
			Version: "1.0.0",
		},
		// Submission and polling each get their own budget; the outer
		// execution timeout has to cover both.
		Timeout:     cfg.PollTimeout + leonardo.DefaultTimeout,
		Description: "Submits a Leonardo.Ai generation job and polls until images are ready",
	}

	return fn, metadata
}

// failureResult wraps a workflow failure in the structured result shape.
func failureResult(msg string) (json.RawMessage, error) {
	return json.Marshal(imageGenResult{
		Error:     msg,
		ImageURLs: []string{},
	})
}

// RegisterImageGenerationTool adds the image generation tool to the registry
// when a Leonardo credential is available. A missing credential is not an
// error: the capability is simply not offered.
func RegisterImageGenerationTool(registry ToolRegistry, cfg ImageGenerationConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Client == nil && resolveAPIKey(cfg.APIKey) == "" {
		logger.Info("leonardo api key not configured, image generation tool not registered")
		return nil
	}

	fn, metadata := NewImageGenerationTool(cfg, logger)
	return registry.Register(ImageGenerationToolName, fn, metadata)
}
