package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnCalculateStart(ctx, "sealed")
	h.OnCalculateComplete(ctx, "sealed", time.Millisecond, nil)
	h.OnLayoutComplete(ctx, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "calc")
	h.OnResponse(ctx, "POST", "openrouter.ai", "/api/v1/chat/completions", 200, time.Second)

	out := buf.String()
	for _, want := range []string{"calculate start", "calculate done", "layout failed", "boom", "cache hit", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksInstall(t *testing.T) {
	Reset()
	defer Reset()

	h := NewLogHooks(log.New(&bytes.Buffer{}))
	h.Install()
	if Pipeline() != h || Cache() != h || HTTP() != h {
		t.Error("Install() should register hooks for every category")
	}
}

func TestLogHooksRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheMiss(context.Background(), "calc")
	if buf.Len() != 0 {
		t.Errorf("debug events should be suppressed at info level: %q", buf.String())
	}
}
