package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryBackoff = 250 * time.Millisecond
	maxResponseBytes    = 4 << 20
)

type Options struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
	Log          *logger.Logger
}

// Client talks to the spacekeeper REST API. It is safe for concurrent use.
type Client struct {
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	httpClient   *http.Client
	log          *logger.Logger

	mu    sync.RWMutex
	token string
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:      baseURL,
		timeout:      timeout,
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		httpClient:   hc,
		log:          log.With("component", "APIClient"),
		token:        strings.TrimSpace(opts.Token),
	}, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type File struct {
	Name   string
	Reader io.Reader
}

// Request describes one call. A non-empty Files map switches the body to
// multipart, with Form values sent as plain fields; otherwise Body is JSON.
type Request struct {
	Query url.Values
	Body  any
	Form  map[string]string
	Files map[string]File
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) Result {
	return c.Do(ctx, http.MethodGet, path, Request{Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, http.MethodPost, path, Request{Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, http.MethodPut, path, Request{Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, http.MethodPatch, path, Request{Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) Result {
	return c.Do(ctx, http.MethodDelete, path, Request{})
}

func (c *Client) Upload(ctx context.Context, path string, form map[string]string, files map[string]File) Result {
	return c.Do(ctx, http.MethodPost, path, Request{Form: form, Files: files})
}

// Do issues the request. Only GETs are retried, on transport errors and
// retryable statuses, with doubling backoff.
func (c *Client) Do(ctx context.Context, method, path string, req Request) Result {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return failure(err)
	}
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}
	backoff := c.retryBackoff
	var res Result
	for attempt := 0; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return failure(ctx.Err())
		}
		var retryable bool
		res, retryable = c.once(ctx, method, target, body, contentType)
		if !retryable || attempt == retries {
			return res
		}
		c.log.Debug("Retrying request", "method", method, "path", path, "attempt", attempt+1, "status", res.Status)
		select {
		case <-ctx.Done():
			return failure(ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return res
}

func (c *Client) once(ctx context.Context, method, target string, body []byte, contentType string) (Result, bool) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return failure(err), false
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failure(err), ctx.Err() == nil
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return failure(fmt.Errorf("read response: %w", err)), true
	}
	return newResult(resp.StatusCode, raw), retryableStatus(resp.StatusCode)
}

func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}

func encodeBody(req Request) ([]byte, string, error) {
	if len(req.Files) > 0 {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range req.Form {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", k, err)
			}
		}
		for field, f := range req.Files {
			if f.Reader == nil {
				return nil, "", fmt.Errorf("file %q has no content", field)
			}
			name := f.Name
			if name == "" {
				name = field
			}
			part, err := mw.CreateFormFile(field, name)
			if err != nil {
				return nil, "", fmt.Errorf("create form file: %w", err)
			}
			if _, err := io.Copy(part, f.Reader); err != nil {
				return nil, "", fmt.Errorf("copy %s: %w", name, err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), mw.FormDataContentType(), nil
	}
	if req.Body == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return raw, "application/json", nil
}
