package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type HTTPOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// HTTPClient posts jobs to the processor's /process endpoint as a form.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{httpClient: client, baseURL: base}
}

// StatusError reports a non-2xx answer from the processor.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("processor: http %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("processor: http %d", e.StatusCode)
}

func (c *HTTPClient) TriggerProcessing(ctx context.Context, job Job) error {
	if c == nil {
		return errors.New("processor client not configured")
	}
	if strings.TrimSpace(job.RequestID) == "" {
		return errors.New("processor: request id required")
	}
	form := url.Values{}
	form.Set("request_id", job.RequestID)
	form.Set("image_path", job.ImagePath)
	form.Set("color_count", strconv.Itoa(job.ColorCount))
	form.Set("difficulty", strings.ToLower(job.Difficulty))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ Trigger = (*HTTPClient)(nil)
