package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"fileconv/internal/config"
	"fileconv/internal/logging"
	"fileconv/internal/services"
)

const (
	uploadPath  = "/upload"
	convertPath = "/convert"

	// RequestIDHeader carries the per-attempt correlation identifier.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 * 1024
)

// Options configure a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the conversion service.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewClient validates the base URL and builds a client. A zero Timeout waits
// indefinitely and relies on the context for cancellation.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api: base url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:      base,
		http:      httpClient,
		userAgent: strings.TrimSpace(opts.UserAgent),
		logger:    logging.NewComponentLogger(opts.Logger, "api"),
	}, nil
}

// NewFromConfig builds a client from the [server] section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("api: config is required")
	}
	return NewClient(Options{
		BaseURL:   cfg.Server.BaseURL,
		Timeout:   cfg.RequestTimeout(),
		UserAgent: cfg.Server.UserAgent,
		Logger:    logger,
	})
}

// BaseURL returns the resolved service root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve turns a download reference into an absolute URL. Absolute references
// are returned unchanged; relative ones are resolved against the base URL.
func (c *Client) Resolve(ref string) (*url.URL, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("api: empty reference")
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("api: parse reference %q: %w", ref, err)
	}
	if parsed.IsAbs() {
		return parsed, nil
	}
	return c.base.ResolveReference(parsed), nil
}

// UploadFile opens path and uploads its contents under the file's base name.
func (c *Client) UploadFile(ctx context.Context, path string) (UploadResponse, error) {
	f, err := openFile(path)
	if err != nil {
		return UploadResponse{}, err
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

// Upload streams body as the "file" field of a multipart POST /upload.
func (c *Client) Upload(ctx context.Context, name string, body io.Reader) (UploadResponse, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = form.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, uploadPath, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return UploadResponse{}, transportError("upload", "build request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var payload UploadResponse
	status, err := c.do(req, "upload", &payload)
	if err != nil {
		return UploadResponse{}, err
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return UploadResponse{}, &RejectedError{Endpoint: "upload", Status: status, Message: msg}
	}
	if status >= 400 {
		return UploadResponse{}, transportError("upload", fmt.Sprintf("status %d", status), nil)
	}
	if strings.TrimSpace(payload.Filename) == "" {
		return UploadResponse{}, transportError("upload", "response missing filename", nil)
	}
	payload.FileCategory = strings.ToLower(strings.TrimSpace(payload.FileCategory))
	return payload, nil
}

// Convert issues POST /convert. The request id from ctx, when present, is
// forwarded in the X-Request-ID header.
func (c *Client) Convert(ctx context.Context, in ConvertRequest) (ConvertResponse, error) {
	encoded, err := json.Marshal(in)
	if err != nil {
		return ConvertResponse{}, transportError("convert", "encode request", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, convertPath, bytes.NewReader(encoded))
	if err != nil {
		return ConvertResponse{}, transportError("convert", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload ConvertResponse
	status, err := c.do(req, "convert", &payload)
	if err != nil {
		return ConvertResponse{}, err
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return ConvertResponse{}, &RejectedError{Endpoint: "convert", Status: status, Message: msg}
	}
	if status >= 400 {
		return ConvertResponse{}, transportError("convert", fmt.Sprintf("status %d", status), nil)
	}
	if strings.TrimSpace(payload.DownloadURL) == "" {
		return ConvertResponse{}, transportError("convert", "response missing download_url", nil)
	}
	return payload, nil
}

// Download fetches ref and copies the body into w.
func (c *Client) Download(ctx context.Context, ref string, w io.Writer) (DownloadResult, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return DownloadResult{}, services.Wrap(services.ErrValidation, "download", "", "invalid reference", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return DownloadResult{}, transportError("download", "build request", err)
	}
	c.decorate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return DownloadResult{}, transportError("download", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(body, &payload) == nil && strings.TrimSpace(payload.Error) != "" {
			return DownloadResult{}, &RejectedError{Endpoint: "download", Status: resp.StatusCode, Message: strings.TrimSpace(payload.Error)}
		}
		return DownloadResult{}, transportError("download", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return DownloadResult{}, transportError("download", "read body", err)
	}
	return DownloadResult{
		URL:         target.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Bytes:       written,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.decorate(ctx, req)
	return req, nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set(RequestIDHeader, rid)
	}
}

// do executes req and decodes the JSON body into out regardless of status so
// that error payloads on non-2xx responses are still surfaced.
func (c *Client) do(req *http.Request, endpoint string, out any) (int, error) {
	logger := logging.WithContext(req.Context(), c.logger)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("request failed",
			logging.String("endpoint", endpoint),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return 0, transportError(endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	logger.Debug("response received",
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode >= 400 {
			return resp.StatusCode, transportError(endpoint, fmt.Sprintf("status %d", resp.StatusCode), nil)
		}
		return resp.StatusCode, transportError(endpoint, "decode response", err)
	}
	return resp.StatusCode, nil
}
