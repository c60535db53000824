package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/basel-ax/draw/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Client represents the Generative Language predict API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the overall HTTP timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new predict API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictRequest struct {
	Instances []predictInstance `json:"instances"`
}

// Predict implements the image generation request
func (c *Client) Predict(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	if req.Model == "" {
		return nil, errors.New("model is required")
	}

	body, err := json.Marshal(predictRequest{
		Instances: []predictInstance{{Prompt: req.Prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(req.Model), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewTransportError(redactKey(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	// Status codes are not checked; API errors are JSON bodies without
	// predictions and surface through the malformed response path.
	return decodeResponse(respBody)
}

func (c *Client) endpoint(model string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/models/%s:predict?%s", c.baseURL, url.PathEscape(model), q.Encode())
}

func decodeResponse(body []byte) (*domain.ImageGenerationResponse, error) {
	if !json.Valid(body) {
		var v any
		err := json.Unmarshal(body, &v)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, domain.NewMalformedResponseError(body)
	}
	raw, ok := top["predictions"]
	if !ok {
		return nil, domain.NewMalformedResponseError(body)
	}

	var result domain.ImageGenerationResponse
	if err := json.Unmarshal(raw, &result.Predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}

	return &result, nil
}

// redactKey masks the key query parameter in the URL that *url.Error embeds
// in its message.
func redactKey(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return err
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
		ue.URL = u.String()
	}
	return err
}
