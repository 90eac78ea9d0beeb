package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

// Client performs HTTP requests against the API under test
type Client interface {
	Get(ctx context.Context, path string) (*Response, error)
}

// HTTPClient implements Client using net/http
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// NewClient creates a client rooted at baseURL; timeout bounds each request
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Get issues a GET request for path relative to the base URL
func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	url := c.endpoint(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: GET %s: %v", models.ErrNetworkTimeout, url, err)
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: reading %s: %v", models.ErrNetworkTimeout, url, err)
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	elapsed := time.Since(start)

	c.logger.Debug("api response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Elapsed:    elapsed,
	}, nil
}

// endpoint returns the full URL for path
func (c *HTTPClient) endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// JSON decodes the body into v
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: response is not valid JSON: %v", models.ErrAssertionFailed, err)
	}
	return nil
}

// ContentType returns the lower-cased Content-Type header
func (r *Response) ContentType() string {
	return strings.ToLower(r.Header.Get("Content-Type"))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
