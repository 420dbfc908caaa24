package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/httputil"
)

func reply(content string) string {
	b, _ := json.Marshal(chatResponse{Choices: []struct {
		Message chatMessage `json:"message"`
	}{{Message: chatMessage{Role: "assistant", Content: content}}}})
	return string(b)
}

func newServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fastRetry() Option {
	return WithHTTPOptions(httputil.WithRetry(2, time.Millisecond))
}

func TestExtractRequest(t *testing.T) {
	var got chatRequest
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(reply(`{"fs": 38, "qts": 0.35, "vas": 52.1}`)))
	}))
	defer srv.Close()

	c := NewClient(" sk-test ", WithEndpoint(srv.URL))
	p, err := c.Extract(context.Background(), "  Fs 38 Hz, Qts 0.35, Vas 52.1 L  ")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if header.Get("Authorization") != "Bearer sk-test" {
		t.Errorf("Authorization = %q", header.Get("Authorization"))
	}
	if header.Get("HTTP-Referer") != DefaultReferer || header.Get("X-Title") != DefaultTitle {
		t.Errorf("attribution headers = %q, %q", header.Get("HTTP-Referer"), header.Get("X-Title"))
	}
	if got.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", got.Model, DefaultModel)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("Messages = %+v", got.Messages)
	}
	if !strings.HasSuffix(got.Messages[0].Content, "\n\nText: Fs 38 Hz, Qts 0.35, Vas 52.1 L") {
		t.Errorf("prompt = %q", got.Messages[0].Content)
	}

	d := p.Merge(enclosure.Driver{})
	if d != (enclosure.Driver{Fs: 38, Qts: 0.35, Vas: 52.1}) {
		t.Errorf("Merge() = %+v", d)
	}
}

func TestExtractInputErrors(t *testing.T) {
	tests := []struct {
		name, key, text string
		code            errors.Code
	}{
		{"empty text", "k", "   ", errors.ErrCodeMissingInput},
		{"empty key", "", "Fs 40", errors.ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.key, WithEndpoint("http://127.0.0.1:0")).Extract(context.Background(), tt.text)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExtractStatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		code      errors.Code
		wantCalls int32
	}{
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized, 1},
		{http.StatusBadRequest, errors.ErrCodeNetwork, 1},
		{http.StatusInternalServerError, errors.ErrCodeNetwork, 2},
		{http.StatusTooManyRequests, errors.ErrCodeRateLimited, 2},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := newServer(t, tt.status, `{"error":"nope"}`, &calls)
			_, err := NewClient("k", WithEndpoint(srv.URL), fastRetry()).Extract(context.Background(), "Fs 40")
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestExtractNoParameters(t *testing.T) {
	srv := newServer(t, http.StatusOK, reply("I could not find any parameters."), nil)
	_, err := NewClient("k", WithEndpoint(srv.URL)).Extract(context.Background(), "hello")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(err.Error(), "no valid parameters found") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestExtractNoChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"choices": []}`, nil)
	_, err := NewClient("k", WithEndpoint(srv.URL)).Extract(context.Background(), "Fs 40")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExtractCached(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, http.StatusOK, reply(`{"fs": 40}`), &calls)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	c := NewClient("k", WithEndpoint(srv.URL), WithModel("test/model"), WithCache(fc, nil))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := c.Extract(ctx, "Fs 40")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if p.Fs == nil || *p.Fs != 40 || p.Qts != nil {
			t.Errorf("params = %+v", p)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (second call cached)", calls.Load())
	}

	if _, err := c.ExtractFresh(ctx, "Fs 40"); err != nil {
		t.Fatalf("ExtractFresh() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 after ExtractFresh", calls.Load())
	}
}
