package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moviefinder/pkg/metrics"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4 << 10
)

type Options struct {
	BaseURL      string
	APIKey       string
	Language     string
	IncludeAdult bool
	Timeout      time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the TMDb v3 REST API. It is safe for concurrent use and
// meant to be built once at startup.
type Client struct {
	baseURL      string
	apiKey       string
	language     string
	includeAdult bool
	http         *http.Client
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       opts.APIKey,
		language:     opts.Language,
		includeAdult: opts.IncludeAdult,
		http:         httpClient,
	}
}

// StatusError is returned when TMDb answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	// StatusMessage is TMDb's own status_message, when the body carries one.
	StatusMessage string
	Body          string
}

func (e *StatusError) Error() string {
	if e.StatusMessage != "" {
		return fmt.Sprintf("tmdb %s: bad status %d: %s", e.Endpoint, e.StatusCode, e.StatusMessage)
	}
	return fmt.Sprintf("tmdb %s: bad status %d, response: %s", e.Endpoint, e.StatusCode, e.Body)
}

// get issues a GET against path and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	const op = "tmdb.Client.get"

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, c.redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, c.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
		var apiErr struct {
			StatusMessage string `json:"status_message"`
		}
		if json.Unmarshal(body, &apiErr) == nil {
			statusErr.StatusMessage = apiErr.StatusMessage
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s response: %w", op, endpoint, err)
	}
	return nil
}

// redact strips the api key from URLs carried in transport errors so they
// can be logged.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if c.apiKey != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	metrics.ObserveUpstream(endpoint, err, time.Since(start))
}
