// Package backend is the HTTP client for the external inference service.
package backend

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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/metrics"
)

// Endpoint names, also used as metric labels
const (
	EndpointRelated = "related_symptoms"
	EndpointPredict = "predict"
)

var (
	// ErrInvalidConfig is returned for an unusable base URL
	ErrInvalidConfig = errors.New("backend: invalid configuration")
	// ErrInvalidResponse is returned when a response body fails validation
	ErrInvalidResponse = errors.New("backend: invalid response")
)

// Prediction is one ranked disease candidate
type Prediction struct {
	Disease    string  `json:"disease" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
}

type symptomsRequest struct {
	Symptoms []string `json:"symptoms"`
}

type relatedResponse struct {
	Related []string `json:"related" validate:"required,dive,required"`
}

type predictResponse struct {
	Predictions []Prediction `json:"predictions" validate:"required,dive"`
	// Set by the backend instead of predictions when its model failed to load
	Error string `json:"error,omitempty"`
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s returned HTTP %d: %s [request_id=%s]", e.Endpoint, e.StatusCode, e.Message, e.RequestID)
}

// Client talks to the inference backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     logging.Logger
	metrics    *metrics.Metrics
	validate   *validator.Validate
}

// NewClient creates a client rooted at baseURL (scheme and host, no /api suffix)
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidConfig
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", ErrInvalidConfig, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL scheme must be http or https", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  "symptom-checker",
		logger:     logging.NewNop(),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RelatedSymptoms asks the backend which symptoms co-occur with the selection
func (c *Client) RelatedSymptoms(ctx context.Context, selected []string) ([]string, error) {
	var resp relatedResponse
	if err := c.post(ctx, EndpointRelated, symptomsRequest{Symptoms: nonNil(selected)}, &resp); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, EndpointRelated, err)
	}
	return resp.Related, nil
}

// Predict asks the backend for ranked disease predictions.
// The returned order is the backend's order.
func (c *Client) Predict(ctx context.Context, selected []string) ([]Prediction, error) {
	var resp predictResponse
	if err := c.post(ctx, EndpointPredict, symptomsRequest{Symptoms: nonNil(selected)}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidResponse, EndpointPredict, resp.Error)
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, EndpointPredict, err)
	}
	return resp.Predictions, nil
}

// post sends a JSON body to /api/{endpoint} and decodes the answer into result
func (c *Client) post(ctx context.Context, endpoint string, body, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveBackend(endpoint, time.Since(start), err)
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("backend call",
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
		logging.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			RequestID:  requestID,
			Message:    strings.TrimSpace(string(respBody)),
		}
		var detail struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		if json.Unmarshal(respBody, &detail) == nil {
			if detail.Error != "" {
				apiErr.Message = detail.Error
			} else if detail.Detail != "" {
				apiErr.Message = detail.Detail
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, endpoint, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
