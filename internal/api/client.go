package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Doer performs HTTP requests
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the typed client for the EventEase backend. Calls made before
// login go through public; everything else through authed, which attaches
// the bearer token and handles 401/403.
type Client struct {
	baseURL string
	public  Doer
	authed  Doer
	logger  *slog.Logger
}

// NewClient creates a new Client
func NewClient(baseURL string, public, authed Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		public:  public,
		authed:  authed,
		logger:  logger,
	}
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read backend response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs req and reads the whole body. Transport failures become
// models.ErrNetwork.
func (c *Client) send(doer Doer, req *http.Request) (*response, error) {
	resp, err := doer.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Warn("backend request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Any("error", err))
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkError(err)
	}

	c.logger.Debug("backend response",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode))

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// call sends a JSON request and decodes a 2xx JSON answer into out. Any
// other status is returned as *Error.
func (c *Client) call(ctx context.Context, doer Doer, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.send(doer, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return newError(resp.status, resp.body)
	}

	return decode(resp.body, out)
}

func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

const maxResponseBytes = 10 << 20
