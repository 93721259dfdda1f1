// Package genai adapts the Gemini API (Veo models) to the studio's
// submit/poll/fetch contract.
package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"veostudio/internal/domain"
	"veostudio/internal/infra"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/"

// KeySource yields the API key to use for the next call. An empty key with a
// nil error means no key has been selected.
type KeySource func(ctx context.Context) (string, error)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	KeySource  KeySource
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the Gemini API through the genai SDK. A fresh SDK client is
// built on every call so a key selected at runtime applies immediately.
type Client struct {
	apiKey     string
	keySource  KeySource
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a Gemini client. Callers may provide a nil HTTP client;
// one with a generous timeout is created for downloads.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		keySource:  opts.KeySource,
		baseURL:    strings.TrimSpace(opts.BaseURL),
		httpClient: client,
		logger:     logger,
	}, nil
}

// Submit starts a long-running video generation.
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationOperation, error) {
	client, err := c.sdkClient(ctx)
	if err != nil {
		return nil, err
	}

	var image *sdk.Image
	if req.SourceImage != nil && req.SourceImage.Data != "" {
		raw, err := base64.StdEncoding.DecodeString(req.SourceImage.Data)
		if err != nil {
			return nil, fmt.Errorf("genai: decode source image: %w", err)
		}
		image = &sdk.Image{ImageBytes: raw, MIMEType: req.SourceImage.MIMEType}
	}

	cfg := &sdk.GenerateVideosConfig{
		NumberOfVideos: int32(req.NumberOfVideos),
		AspectRatio:    string(req.AspectRatio),
	}
	if req.DurationSeconds > 0 {
		cfg.DurationSeconds = sdk.Ptr(int32(req.DurationSeconds))
	}

	c.logger.Debug().
		Str("model", req.Model).
		Bool("has_image", image != nil).
		Int("duration_seconds", req.DurationSeconds).
		Str("aspect_ratio", string(req.AspectRatio)).
		Msg("genai: generate videos")

	op, err := client.Models.GenerateVideos(ctx, req.Model, req.Prompt, image, cfg)
	if err != nil {
		return nil, remoteError(err)
	}
	return toOperation(op), nil
}

// Poll re-fetches the status of op by name.
func (c *Client) Poll(ctx context.Context, op *domain.GenerationOperation) (*domain.GenerationOperation, error) {
	if op == nil || op.Name == "" {
		return nil, errors.New("genai: operation name is required")
	}
	client, err := c.sdkClient(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := client.Operations.GetVideosOperation(ctx, &sdk.GenerateVideosOperation{Name: op.Name}, nil)
	if err != nil {
		return nil, remoteError(err)
	}
	return toOperation(latest), nil
}

// Fetch resolves a video reference to bytes. Inline data is returned as is;
// otherwise the URI is downloaded with the API key attached.
func (c *Client) Fetch(ctx context.Context, ref domain.VideoRef) ([]byte, error) {
	if len(ref.Data) > 0 {
		return ref.Data, nil
	}
	if ref.URI == "" {
		return nil, errors.New("genai: video reference has no uri")
	}
	uri, err := url.PathUnescape(ref.URI)
	if err != nil {
		return nil, fmt.Errorf("genai: decode video uri: %w", err)
	}
	key, err := c.resolveKey(ctx)
	if err != nil {
		return nil, err
	}
	return c.downloadFile(ctx, uri, key)
}

func (c *Client) downloadFile(ctx context.Context, uri, key string) ([]byte, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		base := c.baseURL
		if base == "" {
			base = defaultBaseURL
		}
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: create download request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", key)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, statusError(resp.StatusCode, data)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("genai: read video: %w", err)
	}
	c.logger.Debug().Int("bytes", len(blob)).Msg("genai: video downloaded")
	return blob, nil
}

func (c *Client) sdkClient(ctx context.Context) (*sdk.Client, error) {
	key, err := c.resolveKey(ctx)
	if err != nil {
		return nil, err
	}
	cfg := &sdk.ClientConfig{
		APIKey:     key,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := sdk.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: new client: %w", err)
	}
	return client, nil
}

// resolveKey prefers a key selected at runtime over the configured one. A
// missing key is reported the way the service reports a rejected one.
func (c *Client) resolveKey(ctx context.Context) (string, error) {
	if c.keySource != nil {
		key, err := c.keySource(ctx)
		if err != nil {
			return "", fmt.Errorf("genai: load api key: %w", err)
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", &domain.RemoteError{
		Code:    http.StatusUnauthorized,
		Message: domain.ErrAPIKeyMissing.Error(),
		Status:  "UNAUTHENTICATED",
	}
}

func toOperation(op *sdk.GenerateVideosOperation) *domain.GenerationOperation {
	if op == nil {
		return &domain.GenerationOperation{}
	}
	out := &domain.GenerationOperation{Name: op.Name, Done: op.Done}
	if len(op.Error) > 0 {
		out.Err = operationError(op.Error)
	}
	if op.Response != nil {
		for _, gv := range op.Response.GeneratedVideos {
			if gv == nil || gv.Video == nil {
				continue
			}
			out.Videos = append(out.Videos, domain.VideoRef{
				URI:      gv.Video.URI,
				MIMEType: gv.Video.MIMEType,
				Data:     gv.Video.VideoBytes,
			})
		}
	}
	return out
}

// operationError reads a google.rpc.Status map.
func operationError(status map[string]any) *domain.RemoteError {
	re := &domain.RemoteError{}
	if code, ok := status["code"].(float64); ok {
		re.Code = int(code)
	} else if code, ok := status["code"].(int); ok {
		re.Code = code
	}
	re.Message, _ = status["message"].(string)
	re.Status, _ = status["status"].(string)
	return re
}

func remoteError(err error) error {
	var apiErr sdk.APIError
	if errors.As(err, &apiErr) {
		return &domain.RemoteError{Code: apiErr.Code, Message: apiErr.Message, Status: apiErr.Status}
	}
	return err
}

func statusError(code int, body []byte) error {
	var envelope struct {
		Error domain.RemoteError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Code == 0 {
			envelope.Error.Code = code
		}
		return &envelope.Error
	}
	return &domain.RemoteError{
		Code:    code,
		Message: strings.TrimSpace(string(body)),
		Status:  http.StatusText(code),
	}
}
