package pixellab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ctavolazzi/pixel-gallery/internal/config"
	"go.uber.org/zap"
)

// Job status values reported by GET /background-jobs/{id}.
const (
	JobStatusPending   = "pending"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Client talks to the PixelLab image-generation API. All operations are
// synchronous and single-shot: no retry, no backoff, no queuing. The only
// waiting behavior is the fixed-interval loop in PollBackgroundJob.
type Client struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	maxJobWait   time.Duration
	httpClient   *http.Client
	logger       *zap.Logger

	// Injectable clock so tests can poll without sleeping.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new PixelLab API client. A missing API key is not an
// error here; authenticated calls fail with ErrMissingAPIKey before any
// network I/O instead.
func NewClient(cfg config.PixelLabConfig, logger *zap.Logger) *Client {
	pollInterval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	maxJobWait := time.Duration(cfg.MaxJobWaitSeconds) * time.Second
	if maxJobWait <= 0 {
		maxJobWait = 300 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		pollInterval: pollInterval,
		maxJobWait:   maxJobWait,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// HasAPIKey reports whether an API key was configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// imageSize is the width/height sub-object embedded in generation requests.
type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GenerateImageParams are the inputs for a single image generation call.
// Optional fields are omitted from the request body when unset; omission,
// not null, is the wire contract.
type GenerateImageParams struct {
	Description     string
	Width           int
	Height          int
	Seed            *int
	NoBackground    bool
	ReferenceImages []string
	StyleImage      map[string]interface{}
	StyleOptions    map[string]interface{}
}

type generateImageRequest struct {
	Description     string                 `json:"description"`
	ImageSize       imageSize              `json:"image_size"`
	Seed            *int                   `json:"seed,omitempty"`
	NoBackground    bool                   `json:"no_background,omitempty"`
	ReferenceImages []string               `json:"reference_images,omitempty"`
	StyleImage      map[string]interface{} `json:"style_image,omitempty"`
	StyleOptions    map[string]interface{} `json:"style_options,omitempty"`
}

// GenerationResult is the normalized response from a generation call.
type GenerationResult struct {
	Images  []string
	Usage   map[string]interface{}
	Success bool
}

type generateImageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Images []string `json:"images"`
	} `json:"data"`
	Usage map[string]interface{} `json:"usage"`
}

// GenerateImage generates a pixel art image from a text description via
// POST /generate-image-v2.
func (c *Client) GenerateImage(ctx context.Context, params GenerateImageParams) (*GenerationResult, error) {
	c.logger.Info("Calling PixelLab generate-image",
		zap.String("description", truncate(params.Description, 50)),
		zap.Int("width", params.Width),
		zap.Int("height", params.Height))

	body := generateImageRequest{
		Description:     params.Description,
		ImageSize:       imageSize{Width: params.Width, Height: params.Height},
		Seed:            params.Seed,
		NoBackground:    params.NoBackground,
		ReferenceImages: params.ReferenceImages,
		StyleImage:      params.StyleImage,
		StyleOptions:    params.StyleOptions,
	}

	var resp generateImageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/generate-image-v2", body, &resp); err != nil {
		return nil, err
	}

	result := &GenerationResult{
		Images:  resp.Data.Images,
		Usage:   resp.Usage,
		Success: resp.Success,
	}
	if result.Usage == nil {
		result.Usage = map[string]interface{}{}
	}

	return result, nil
}

// CharacterParams are the inputs for a 4-direction character creation call.
// Extra options (text_guidance_scale, outline, shading, ...) pass through
// into the request body as-is.
type CharacterParams struct {
	Description string
	Width       int
	Height      int
	Extra       map[string]interface{}
}

// CharacterResult identifies the server-side character and the background
// job that renders its directional views.
type CharacterResult struct {
	CharacterID     string
	BackgroundJobID string
	Usage           map[string]interface{}
	Success         bool
}

type createCharacterResponse struct {
	Success bool `json:"success"`
	Data    struct {
		CharacterID     string `json:"character_id"`
		BackgroundJobID string `json:"background_job_id"`
	} `json:"data"`
	Usage map[string]interface{} `json:"usage"`
}

// CreateCharacter starts a 4-direction character generation job via
// POST /create-character-with-4-directions. It returns identifiers without
// blocking for job completion; use PollBackgroundJob to wait for the result.
func (c *Client) CreateCharacter(ctx context.Context, params CharacterParams) (*CharacterResult, error) {
	c.logger.Info("Creating 4-direction character",
		zap.String("description", truncate(params.Description, 50)),
		zap.Int("width", params.Width),
		zap.Int("height", params.Height))

	body := map[string]interface{}{
		"description": params.Description,
		"image_size":  imageSize{Width: params.Width, Height: params.Height},
	}
	for k, v := range params.Extra {
		body[k] = v
	}

	var resp createCharacterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/create-character-with-4-directions", body, &resp); err != nil {
		return nil, err
	}

	result := &CharacterResult{
		CharacterID:     resp.Data.CharacterID,
		BackgroundJobID: resp.Data.BackgroundJobID,
		Usage:           resp.Usage,
		Success:         resp.Success,
	}
	if result.Usage == nil {
		result.Usage = map[string]interface{}{}
	}

	return result, nil
}

type backgroundJobResponse struct {
	Data  map[string]interface{} `json:"data"`
	Error string                 `json:"error"`
}

// PollBackgroundJob polls GET /background-jobs/{id} at a fixed interval
// until the job completes (returns its data payload), fails (returns
// *JobFailedError), or maxWait elapses (returns *JobTimeoutError). A
// non-positive maxWait falls back to the configured ceiling. The call
// blocks for the duration; ctx cancellation interrupts the wait.
func (c *Client) PollBackgroundJob(ctx context.Context, jobID string, maxWait time.Duration) (map[string]interface{}, error) {
	if maxWait <= 0 {
		maxWait = c.maxJobWait
	}
	deadline := c.now().Add(maxWait)

	for c.now().Before(deadline) {
		var resp backgroundJobResponse
		if err := c.doRequest(ctx, http.MethodGet, "/background-jobs/"+jobID, nil, &resp); err != nil {
			return nil, err
		}

		status, _ := resp.Data["status"].(string)
		switch status {
		case JobStatusCompleted:
			if resp.Data == nil {
				return map[string]interface{}{}, nil
			}
			return resp.Data, nil
		case JobStatusFailed:
			return nil, &JobFailedError{JobID: jobID, Message: resp.Error}
		}

		c.logger.Debug("Background job still running",
			zap.String("job_id", jobID),
			zap.String("status", status))

		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}
	}

	return nil, &JobTimeoutError{JobID: jobID, MaxWait: maxWait}
}

type balanceResponse struct {
	Data map[string]interface{} `json:"data"`
}

// Balance returns the account balance payload via GET /balance.
func (c *Client) Balance(ctx context.Context) (map[string]interface{}, error) {
	var resp balanceResponse
	if err := c.doRequest(ctx, http.MethodGet, "/balance", nil, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return map[string]interface{}{}, nil
	}
	return resp.Data, nil
}

// doRequest performs one authenticated exchange with the API and decodes
// the JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// sleepContext sleeps for d unless ctx is canceled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
