package leonardo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public Leonardo.Ai REST endpoint.
	DefaultBaseURL = "https://cloud.leonardo.ai/api/rest/v1"

	// DefaultTimeout bounds submission and account calls. Status queries use
	// the shorter statusTimeout instead.
	DefaultTimeout = 60 * time.Second

	statusTimeout = 15 * time.Second
)

// Operation names used in log fields, error messages, and metrics labels.
const (
	opCreateGeneration = "create_generation"
	opGetGeneration    = "get_generation"
	opGetUser          = "get_user"
	opListGenerations  = "list_generations"
	opDeleteGeneration = "delete_generation"
	opDownloadImage    = "download_image"
)

// MetricsRecorder receives call and workflow outcomes from the client.
// Implementations must be safe for concurrent use; a nil recorder disables
// recording.
type MetricsRecorder interface {
	// RecordCall observes one HTTP call. status is 0 when the call never
	// produced a response.
	RecordCall(op string, status int, duration time.Duration)
	// RecordWorkflow observes one completed submit-then-poll workflow.
	RecordWorkflow(outcome string, duration time.Duration, images int)
}

// Config configures the Leonardo client.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// HTTPClient overrides the transport. Leave nil for the default.
	HTTPClient *http.Client `json:"-" yaml:"-"`
	// Metrics receives call outcomes. Leave nil to disable.
	Metrics MetricsRecorder `json:"-" yaml:"-"`
}

// Client talks to the Leonardo.Ai generation API. All methods are safe for
// concurrent use; each call owns its own deadline and no state is shared
// between invocations.
type Client struct {
	cfg     Config
	client  *http.Client
	logger  *zap.Logger
	metrics MetricsRecorder
}

// NewClient creates a Leonardo client. Deadlines are enforced per call with
// context.WithTimeout, so the underlying http.Client carries no timeout of
// its own.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		cfg:     cfg,
		client:  httpClient,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

func (c *Client) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

// doJSON issues one bounded API call and decodes the response into out. A
// non-2xx status or a body that fails to decode aborts the operation; nothing
// is retried.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any, timeout time.Duration) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	httpReq, _ := http.NewRequestWithContext(callCtx, method, c.endpoint(path), reader)
	c.buildHeaders(httpReq)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.recordCall(op, 0, time.Since(start))
		return fmt.Errorf("leonardo: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	c.recordCall(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return mapHTTPError(op, resp.StatusCode, readErrMsg(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Code: ErrBadResponse, Message: fmt.Sprintf("leonardo: %s: decoding response: %v", op, err)}
	}
	return nil
}

// CreateGeneration submits one generation job and returns its job identifier.
// The request is normalized before submission; either an identifier comes
// back or the whole operation fails, there is no partial success.
func (c *Client) CreateGeneration(ctx context.Context, req GenerationRequest) (string, error) {
	req = req.Normalize()
	if req.Prompt == "" {
		return "", &Error{Code: ErrInvalidRequest, Message: "leonardo: prompt is required"}
	}
	if c.cfg.APIKey == "" {
		return "", &Error{Code: ErrUnauthorized, Message: "leonardo: api key is required"}
	}

	var cResp createGenerationResp
	if err := c.doJSON(ctx, opCreateGeneration, http.MethodPost, "/generations", req, &cResp, c.cfg.Timeout); err != nil {
		return "", err
	}

	id := cResp.SDGenerationJob.GenerationID
	if id == "" {
		return "", &Error{Code: ErrBadResponse, Message: "leonardo: create response missing sdGenerationJob.generationId"}
	}

	c.logger.Debug("generation submitted",
		zap.String("generation_id", id),
		zap.Int("num_images", req.NumImages),
		zap.String("preset_style", req.PresetStyle))
	return id, nil
}

// GetGeneration fetches one status snapshot for the given job identifier.
// Each call carries its own 15s deadline, independent of any outer poll
// budget.
func (c *Client) GetGeneration(ctx context.Context, generationID string) (*GenerationStatus, error) {
	if generationID == "" {
		return nil, &Error{Code: ErrInvalidRequest, Message: "leonardo: generation id is required"}
	}

	var gResp getGenerationResp
	if err := c.doJSON(ctx, opGetGeneration, http.MethodGet, "/generations/"+generationID, nil, &gResp, statusTimeout); err != nil {
		return nil, err
	}
	if gResp.GenerationsByPK == nil {
		return nil, &Error{Code: ErrBadResponse, Message: "leonardo: status response missing generations_by_pk"}
	}

	return &GenerationStatus{
		Status: gResp.GenerationsByPK.Status,
		Images: gResp.GenerationsByPK.GeneratedImages,
	}, nil
}

func (c *Client) recordCall(op string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordCall(op, status, d)
	}
}

func (c *Client) recordWorkflow(outcome string, d time.Duration, images int) {
	if c.metrics != nil {
		c.metrics.RecordWorkflow(outcome, d, images)
	}
}
