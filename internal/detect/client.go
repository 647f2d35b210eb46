package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Model selects which hosted detection model to query.
type Model string

const (
	// ModelSpacing finds bars in elevation photos for spacing checks.
	ModelSpacing Model = "spacing"
	// ModelCounting finds bar cross-sections for count checks.
	ModelCounting Model = "counting"
)

// Client calls the hosted detection service. The service accepts a
// multipart image upload with api_key, confidence and overlap query
// parameters and answers with center-based prediction boxes.
type Client struct {
	apiKey     string
	endpoints  map[Model]string
	httpClient *http.Client
}

// NewClient creates a detection client for the given per-model endpoints.
func NewClient(apiKey string, endpoints map[Model]string) *Client {
	return &Client{
		apiKey:     apiKey,
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Detect uploads an image to the selected model and returns its
// predictions. Confidence and overlap are percentages in 0-100.
func (c *Client) Detect(ctx context.Context, model Model, imageData []byte, confidence, overlap int) (*Result, error) {
	endpoint, ok := c.endpoints[model]
	if !ok {
		return nil, fmt.Errorf("no endpoint configured for model %q", model)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("confidence", strconv.Itoa(confidence))
	query.Set("overlap", strconv.Itoa(overlap))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
