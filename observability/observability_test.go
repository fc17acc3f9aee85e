package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestRecorderWithSharesEntries(t *testing.T) {
	rec := NewRecorder()
	child := rec.With(String("doc", "abc"))
	child.Warn("overlay failed", Int("page", 3))
	rec.Debug("cancelled")

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["doc"] != "abc" || entries[0].Fields["page"] != 3 {
		t.Fatalf("unexpected fields: %+v", entries[0].Fields)
	}
	if rec.Count(LevelWarn) != 1 || rec.Count(LevelError) != 0 {
		t.Fatalf("unexpected level counts: %+v", entries)
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.With(Int("page", 2)).Error("raster failed", Error("error", errors.New("boom")), Float64("scale", 1.5))
	out := buf.String()
	for _, want := range []string{"raster failed", "page=2", "error=boom", "scale=1.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}
