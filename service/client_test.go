package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixlab/retouch"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testRaster(t *testing.T, w, h int) *retouch.Raster {
	t.Helper()
	r, err := retouch.NewRaster(pngBytes(t, w, h, color.NRGBA{R: 50, G: 60, B: 70, A: 255}))
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	return r
}

func imageJSON(t *testing.T, w, h int) map[string]any {
	t.Helper()
	return map[string]any{
		"data": base64.StdEncoding.EncodeToString(pngBytes(t, w, h, color.NRGBA{G: 255, A: 255})),
		"mime": "image/png",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "edit-1"}), srv
}

func TestClientEditHotspot(t *testing.T) {
	var got editRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/edits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"image": imageJSON(t, 20, 10)})
	})

	hotspot := image.Pt(7, 3)
	out, err := client.Edit(context.Background(), testRaster(t, 20, 10), "add hat", EditTarget{Hotspot: &hotspot})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if out.Width() != 20 || out.Height() != 10 {
		t.Errorf("expected 20x10, got %dx%d", out.Width(), out.Height())
	}
	if got.Prompt != "add hat" || got.Model != "edit-1" {
		t.Errorf("unexpected request fields: %+v", got)
	}
	if got.Hotspot == nil || got.Hotspot.X != 7 || got.Hotspot.Y != 3 {
		t.Errorf("expected hotspot (7,3), got %+v", got.Hotspot)
	}
	if got.Mask != nil {
		t.Error("hotspot edit must not carry a mask")
	}
}

func TestClientEditTargetValidation(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"})
	ctx := context.Background()

	_, err := client.Edit(ctx, testRaster(t, 4, 4), "x", EditTarget{})
	if !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}

	hotspot := image.Pt(1, 1)
	_, err = client.Edit(ctx, testRaster(t, 4, 4), "x", EditTarget{Hotspot: &hotspot, Mask: []byte{1}})
	if !errors.Is(err, ErrAmbiguousTarget) {
		t.Errorf("expected ErrAmbiguousTarget, got %v", err)
	}
}

func TestClientBackendError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "safety_blocked", "message": "content blocked"},
		})
	})
	hotspot := image.Pt(1, 1)
	_, err := client.Edit(context.Background(), testRaster(t, 4, 4), "x", EditTarget{Hotspot: &hotspot})
	var se *retouch.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if want := "content blocked (safety_blocked)"; se.Err.Error() != want {
		t.Errorf("expected %q, got %q", want, se.Err.Error())
	}
}

func TestClientMissingImageIsFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})
	_, err := client.GlobalEdit(context.Background(), testRaster(t, 4, 4), "night")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", err)
	}
}

func TestClientInvalidModelOutput(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"image": map[string]any{
				"data": base64.StdEncoding.EncodeToString([]byte("junk")),
				"mime": "image/png",
			},
		})
	})
	_, err := client.GlobalEdit(context.Background(), testRaster(t, 4, 4), "night")
	var se *retouch.ServiceError
	if !errors.As(err, &se) {
		t.Errorf("expected ServiceError for undecodable output, got %v", err)
	}
}

func TestClientRemove(t *testing.T) {
	var got editRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/removals" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"image": imageJSON(t, 4, 4)})
	})
	mask := pngBytes(t, 4, 4, color.NRGBA{A: 255})
	if _, err := client.Remove(context.Background(), testRaster(t, 4, 4), mask); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got.Mask == nil {
		t.Error("removal should carry the mask")
	}
	if _, err := client.Remove(context.Background(), testRaster(t, 4, 4), nil); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget without mask, got %v", err)
	}
}

// The upscale contract is exactly double linear resolution; anything else
// is invalid output.
func TestClientUpscaleContract(t *testing.T) {
	good, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"image": imageJSON(t, 8, 6)})
	})
	out, err := good.Upscale(context.Background(), testRaster(t, 4, 3))
	if err != nil {
		t.Fatalf("Upscale: %v", err)
	}
	if out.Width() != 8 || out.Height() != 6 {
		t.Errorf("expected 8x6, got %dx%d", out.Width(), out.Height())
	}

	wrong, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"image": imageJSON(t, 5, 5)})
	})
	var se *retouch.ServiceError
	if _, err := wrong.Upscale(context.Background(), testRaster(t, 4, 3)); !errors.As(err, &se) {
		t.Errorf("expected ServiceError for wrong size, got %v", err)
	}
}

func TestClientSuggestionsFiltersMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"suggestions": []map[string]string{
				{"title": "Warmer", "prompt": "make it warmer"},
				{"title": "", "prompt": "no title"},
				{"title": "no prompt", "prompt": "  "},
			},
		})
	})
	got, err := client.Suggestions(context.Background(), testRaster(t, 4, 4))
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Warmer" {
		t.Errorf("expected the one well-formed suggestion, got %v", got)
	}
}

func TestClientSuggestionsEmptyIsFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"suggestions": []any{}})
	})
	if _, err := client.Suggestions(context.Background(), testRaster(t, 4, 4)); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", err)
	}
}

func TestClientEnhancePrompt(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/prompts/enhance" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req textRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "a stylish red hat, " + req.Text})
	})
	got, err := client.EnhancePrompt(context.Background(), "add hat")
	if err != nil {
		t.Fatalf("EnhancePrompt: %v", err)
	}
	if got != "a stylish red hat, add hat" {
		t.Errorf("unexpected enhanced text %q", got)
	}
}

func TestClientHTTPErrorWithoutBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.GlobalEdit(context.Background(), testRaster(t, 4, 4), "x")
	var se *retouch.ServiceError
	if !errors.As(err, &se) {
		t.Errorf("expected ServiceError for http failure, got %v", err)
	}
}
