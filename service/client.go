package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pixlab/retouch"
)

// Client talks to the edit backend over HTTP with JSON bodies. Image
// payloads travel base64-encoded in both directions. Client is safe for
// concurrent use; the engine's busy gate serializes mutating calls anyway.
type Client struct {
	cfg  Config
	http *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to add a proxy
// or instrumented transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client for the given config.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// imagePayload carries an encoded image over the wire.
type imagePayload struct {
	Data string `json:"data"` // base64, std encoding
	MIME string `json:"mime"`
}

func encodeImage(r *retouch.Raster) imagePayload {
	return imagePayload{
		Data: base64.StdEncoding.EncodeToString(r.Data()),
		MIME: r.MIME(),
	}
}

type pointPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type editRequest struct {
	Model   string        `json:"model,omitempty"`
	Prompt  string        `json:"prompt,omitempty"`
	Image   imagePayload  `json:"image"`
	Hotspot *pointPayload `json:"hotspot,omitempty"`
	Mask    *imagePayload `json:"mask,omitempty"`
}

type textRequest struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
}

type apiResponse struct {
	Image       *imagePayload `json:"image,omitempty"`
	Suggestions []Suggestion  `json:"suggestions,omitempty"`
	Text        string        `json:"text,omitempty"`
	Error       *apiError     `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Edit implements Edits.
func (c *Client) Edit(ctx context.Context, base *retouch.Raster, prompt string, target EditTarget) (*retouch.Raster, error) {
	const op = "edit"
	if err := target.validate(); err != nil {
		return nil, &retouch.InputError{Op: op, Err: err}
	}
	req := editRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Image:  encodeImage(base),
	}
	if target.Hotspot != nil {
		req.Hotspot = &pointPayload{X: target.Hotspot.X, Y: target.Hotspot.Y}
	}
	if len(target.Mask) != 0 {
		req.Mask = &imagePayload{
			Data: base64.StdEncoding.EncodeToString(target.Mask),
			MIME: "image/png",
		}
	}
	resp, err := c.post(ctx, op, "/v1/edits", req)
	if err != nil {
		return nil, err
	}
	return c.resultImage(op, resp)
}

// GlobalEdit implements Edits.
func (c *Client) GlobalEdit(ctx context.Context, img *retouch.Raster, prompt string) (*retouch.Raster, error) {
	const op = "global edit"
	req := editRequest{Model: c.cfg.Model, Prompt: prompt, Image: encodeImage(img)}
	resp, err := c.post(ctx, op, "/v1/edits/global", req)
	if err != nil {
		return nil, err
	}
	return c.resultImage(op, resp)
}

// Remove implements Edits.
func (c *Client) Remove(ctx context.Context, img *retouch.Raster, mask []byte) (*retouch.Raster, error) {
	const op = "removal"
	if len(mask) == 0 {
		return nil, &retouch.InputError{Op: op, Err: ErrNoTarget}
	}
	req := editRequest{
		Model: c.cfg.Model,
		Image: encodeImage(img),
		Mask: &imagePayload{
			Data: base64.StdEncoding.EncodeToString(mask),
			MIME: "image/png",
		},
	}
	resp, err := c.post(ctx, op, "/v1/removals", req)
	if err != nil {
		return nil, err
	}
	return c.resultImage(op, resp)
}

// Upscale implements Edits. The backend contract is exactly double linear
// resolution with the same composition; a result at any other size is
// rejected as invalid output.
func (c *Client) Upscale(ctx context.Context, img *retouch.Raster) (*retouch.Raster, error) {
	const op = "upscale"
	req := editRequest{Model: c.cfg.Model, Image: encodeImage(img)}
	resp, err := c.post(ctx, op, "/v1/upscales", req)
	if err != nil {
		return nil, err
	}
	out, err := c.resultImage(op, resp)
	if err != nil {
		return nil, err
	}
	if out.Width() != img.Width()*2 || out.Height() != img.Height()*2 {
		return nil, &retouch.ServiceError{Op: op, Err: fmt.Errorf(
			"expected %dx%d, got %dx%d",
			img.Width()*2, img.Height()*2, out.Width(), out.Height())}
	}
	return out, nil
}

// Suggestions implements Edits.
func (c *Client) Suggestions(ctx context.Context, img *retouch.Raster) ([]Suggestion, error) {
	const op = "suggestions"
	req := editRequest{Model: c.cfg.Model, Image: encodeImage(img)}
	resp, err := c.post(ctx, op, "/v1/suggestions", req)
	if err != nil {
		return nil, err
	}
	// An empty or malformed list is a failure, not a valid empty answer.
	valid := resp.Suggestions[:0:0]
	for _, s := range resp.Suggestions {
		if strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Prompt) != "" {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil, &retouch.ServiceError{Op: op, Err: ErrEmptyResult}
	}
	return valid, nil
}

// EnhancePrompt implements Edits.
func (c *Client) EnhancePrompt(ctx context.Context, text string) (string, error) {
	const op = "prompt enhance"
	resp, err := c.post(ctx, op, "/v1/prompts/enhance", textRequest{Model: c.cfg.Model, Text: text})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return "", &retouch.ServiceError{Op: op, Err: ErrEmptyResult}
	}
	return out, nil
}

// post sends a JSON request and decodes the JSON response, mapping
// transport and backend failures to ServiceError.
func (c *Client) post(ctx context.Context, op, path string, body any) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &retouch.ServiceError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &retouch.ServiceError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	retouch.Logger().Debug("service request", slog.String("op", op), slog.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &retouch.ServiceError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, &retouch.ServiceError{Op: op, Err: err}
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &retouch.ServiceError{Op: op, Err: fmt.Errorf("http %d", resp.StatusCode)}
		}
		return nil, &retouch.ServiceError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if out.Error != nil {
		return nil, &retouch.ServiceError{Op: op, Err: out.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retouch.ServiceError{Op: op, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	return &out, nil
}

// resultImage decodes the image payload of a response into a Raster.
func (c *Client) resultImage(op string, resp *apiResponse) (*retouch.Raster, error) {
	if resp.Image == nil || resp.Image.Data == "" {
		return nil, &retouch.ServiceError{Op: op, Err: ErrEmptyResult}
	}
	data, err := base64.StdEncoding.DecodeString(resp.Image.Data)
	if err != nil {
		return nil, &retouch.ServiceError{Op: op, Err: fmt.Errorf("invalid image payload: %w", err)}
	}
	out, err := retouch.NewRaster(data)
	if err != nil {
		return nil, &retouch.ServiceError{Op: op, Err: fmt.Errorf("invalid model output: %w", err)}
	}
	return out, nil
}

var _ Edits = (*Client)(nil)
