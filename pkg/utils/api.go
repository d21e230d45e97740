package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// CategoryNetwork marks failures to reach a remote service at all.
const CategoryNetwork goerrors.Category = "network"

const textCodeRequestFailed = "REQUEST_FAILED"

// StatusError is returned for non-2xx responses. The body has still been
// decoded into the caller's value when it was valid JSON.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: bad status: %s", e.Method, e.URL, e.Status)
}

type API struct {
	client  *http.Client
	baseURL string
	headers http.Header
}

type Option func(*API)

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(a *API) {
		if value != "" {
			a.headers.Set(key, value)
		}
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.client = &http.Client{Timeout: d}
		}
	}
}

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(a *API) {
		if c != nil {
			a.client = c
		}
	}
}

func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		client:  http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the URL paths are resolved against.
func (a *API) BaseURL() string {
	return a.baseURL
}

func (a *API) Get(ctx context.Context, path string, params url.Values, v any) error {
	return a.do(ctx, http.MethodGet, path, params, nil, v)
}

func (a *API) Post(ctx context.Context, path string, body any, v any) error {
	return a.do(ctx, http.MethodPost, path, nil, body, v)
}

func (a *API) do(ctx context.Context, method, path string, params url.Values, body any, v any) error {
	target := a.resolve(path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	for key, values := range a.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, CategoryNetwork, fmt.Sprintf("%s %s failed", method, target)).
			WithTextCode(textCodeRequestFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, CategoryNetwork, fmt.Sprintf("read %s response", target)).
			WithTextCode(textCodeRequestFailed)
	}

	var decodeErr error
	if v != nil && len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, v)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", target, decodeErr)
	}
	return nil
}

func (a *API) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.baseURL + path
}

// IsNetworkError reports whether err, or anything it wraps, is a transport
// failure.
func IsNetworkError(err error) bool {
	return err != nil && goerrors.HasCategory(err, CategoryNetwork)
}
