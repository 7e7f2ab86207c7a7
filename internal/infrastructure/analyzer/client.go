package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/skinlens/backend/internal/domain"
)

const (
	maxAttempts = 3
	baseBackoff = 500 * time.Millisecond
	analyzePath = "/v1/analyze"
)

// Config holds the analyzer client settings
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client calls the upstream skin analysis API
type Client struct {
	http        *resty.Client
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
	sleep       func(context.Context, time.Duration) error
}

// NewClient creates a new analyzer client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "SkinLens/1.0")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:        httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
		logger:      logger.Named("analyzer"),
		sleep:       sleepContext,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the delay before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return baseBackoff * time.Duration(1<<(attempt-1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// imageReference turns the request into the single image_url the API accepts
func imageReference(req domain.AnalyzeRequest) (string, error) {
	switch {
	case req.ImageURL != "":
		return req.ImageURL, nil
	case req.ImageBase64 == "":
		return "", fmt.Errorf("%w: imageUrl or imageBase64 is required", domain.ErrInvalidRequest)
	case strings.HasPrefix(req.ImageBase64, "data:image/"):
		return req.ImageBase64, nil
	default:
		return "data:image/jpeg;base64," + req.ImageBase64, nil
	}
}

// Analyze submits an image and maps the analysis into a scan record.
// Transient failures (transport errors, 429, 5xx) are retried with exponential backoff.
func (c *Client) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.ScanResult, error) {
	image, err := imageReference(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		if c.debug {
			c.logger.Debug("analyze request", zap.Int("attempt", attempt), zap.Bool("inline_image", req.ImageURL == ""))
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(analyzeRequest{ImageURL: image}).
			Post(analyzePath)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("analyze request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrAnalyzerFailure, err)
		} else if resp.StatusCode() == http.StatusOK {
			var out AnalysisResponse
			if err := json.Unmarshal(resp.Body(), &out); err != nil {
				return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrAnalyzerFailure, err)
			}
			return MapToScanResult(&out, req), nil
		} else {
			lastErr = fmt.Errorf("%w: status %d: %s", domain.ErrAnalyzerFailure, resp.StatusCode(), upstreamMessage(resp.Body()))
			if !retryable(resp.StatusCode()) {
				return nil, lastErr
			}
			c.logger.Warn("analyze request rejected",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode()),
			)
		}

		if attempt < maxAttempts {
			if err := c.sleep(ctx, exponentialBackoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Error("all analyze attempts failed", zap.Error(lastErr))
	return nil, lastErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// upstreamMessage extracts the error message from an error body, falling back to the raw text
func upstreamMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
