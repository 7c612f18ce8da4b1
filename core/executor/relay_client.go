package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"furniture-editor/core/models"

	"github.com/pkg/errors"
)

// ProcessImagePath is the relay route that accepts image jobs
const ProcessImagePath = "/api/process-image"

// ErrRelayFailed is the message recorded on a job when the relay answers
// with a non-OK status
var ErrRelayFailed = errors.New("Failed to process image")

// ProcessRequest is the JSON body sent to the relay
type ProcessRequest struct {
	Image    string `json:"image"`
	Prompt   string `json:"prompt"`
	MimeType string `json:"mimeType"`
}

// ProcessResponse is the JSON body returned by the relay
type ProcessResponse struct {
	Success           bool   `json:"success"`
	ProcessedImageURL string `json:"processedImageUrl"`
	Description       string `json:"description"`
	Error             string `json:"error,omitempty"`
}

// RelayClient talks to the relay endpoint on behalf of the submission driver
type RelayClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewRelayClient creates a client for the relay at baseURL
func NewRelayClient(baseURL string, timeout time.Duration) (*RelayClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid relay URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("relay URL must be http or https, got %q", baseURL)
	}

	return &RelayClient{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// EncodeImage converts the original bytes to the text form the relay expects
func EncodeImage(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ProcessImage submits one job with the prompt and waits for the relay's answer
func (c *RelayClient) ProcessImage(ctx context.Context, job *models.ImageJob, prompt string) (*ProcessResponse, error) {
	body, err := json.Marshal(ProcessRequest{
		Image:    EncodeImage(job.Data),
		Prompt:   prompt,
		MimeType: job.MimeType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	endpoint, err := c.Resolve(ProcessImagePath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "relay request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRelayFailed
	}

	var result ProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "invalid relay response")
	}
	if result.ProcessedImageURL == "" {
		return nil, errors.New("invalid relay response: missing processedImageUrl")
	}

	return &result, nil
}

// FetchResult downloads the payload behind a result reference
func (c *RelayClient) FetchResult(ctx context.Context, ref string) ([]byte, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", ref)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", ref)
	}
	return data, nil
}

// Resolve turns a relay-relative reference such as /api/placeholder-image
// into an absolute URL. Absolute references are returned unchanged.
func (c *RelayClient) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(err, "invalid reference %q", ref)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}
