// Package extractor is the HTTP client for the remote document-to-markdown
// conversion service.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DefaultTimeout bounds a single conversion request.
const DefaultTimeout = 5 * time.Minute

// ConvertResult is the service's response for a file conversion.
type ConvertResult struct {
	Success      bool   `json:"success"`
	Filename     string `json:"filename,omitempty"`
	Markdown     string `json:"markdown,omitempty"`
	OriginalSize int64  `json:"original_size,omitempty"`
	MarkdownSize int64  `json:"markdown_size,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ConvertURLResult is the service's response for a URL conversion.
type ConvertURLResult struct {
	Success      bool   `json:"success"`
	URL          string `json:"url,omitempty"`
	Markdown     string `json:"markdown,omitempty"`
	MarkdownSize int64  `json:"markdown_size,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Client talks to the markdown extractor service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client to use.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates an extractor client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Healthy probes the service's health endpoint. Any 2xx response counts as
// healthy.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Convert posts file bytes to the service and returns the markdown
// rendition.
func (c *Client) Convert(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body; %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file part; %w", err)
	}
	if err := writer.WriteField("filename", filename); err != nil {
		return "", fmt.Errorf("failed to write filename field; %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body; %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request; %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result ConvertResult
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("extractor rejected %q: %s", filename, result.Error)
	}

	return result.Markdown, nil
}

// ConvertURL asks the service to fetch and convert a remote document.
func (c *Client) ConvertURL(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request; %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert-url", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request; %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result ConvertURLResult
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("extractor rejected url %q: %s", url, result.Error)
	}

	return result.Markdown, nil
}

// do executes a request and decodes the JSON response into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extractor request failed; %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response; %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("extractor error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response; %w", err)
	}
	return nil
}
