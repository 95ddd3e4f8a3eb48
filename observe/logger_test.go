package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_IncludesSourceField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithSource("cube-7f3a").Info(context.Background(), "region created")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if v, ok := entries[0]["source.id"].(string); !ok || v != "cube-7f3a" {
		t.Errorf("expected source.id='cube-7f3a', got %v", entries[0]["source.id"])
	}
	if v, ok := entries[0]["msg"].(string); !ok || v != "region created" {
		t.Errorf("expected msg='region created', got %v", entries[0]["msg"])
	}
}

func TestLogger_WithSourceDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	_ = logger.WithSource("a")
	logger.Info(context.Background(), "parent")

	entries := decodeLines(t, &buf)
	if _, ok := entries[0]["source.id"]; ok {
		t.Errorf("parent logger should not carry source.id, got %v", entries[0]["source.id"])
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "store rejected",
		Field{Key: "elapsed_ms", Value: 50.5},
		Field{Key: "error", Value: errors.New("region: entry exceeds capacity")},
	)

	entry := decodeLines(t, &buf)[0]
	if v, ok := entry["level"].(string); !ok || v != "error" {
		t.Errorf("expected level='error', got %v", entry["level"])
	}
	if v, ok := entry["elapsed_ms"].(float64); !ok || v != 50.5 {
		t.Errorf("expected elapsed_ms=50.5, got %v", entry["elapsed_ms"])
	}
	if v, ok := entry["error"].(string); !ok || v != "region: entry exceeds capacity" {
		t.Errorf("expected error text, got %v", entry["error"])
	}
}

func TestLogger_SensitiveFieldsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Debug(context.Background(), "lookup",
		Field{Key: "descriptor", Value: "select * from users where email = 'a@b.c'"},
		Field{Key: "token", Value: "abc"},
		Field{Key: "fingerprint", Value: "fp:0011"},
	)

	entry := decodeLines(t, &buf)[0]
	for _, key := range []string{"descriptor", "token"} {
		if entry[key] != "[REDACTED]" {
			t.Errorf("expected %s to be redacted, got %v", key, entry[key])
		}
	}
	if entry["fingerprint"] != "fp:0011" {
		t.Errorf("fingerprint should not be redacted, got %v", entry["fingerprint"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{level: "debug", want: []string{"debug", "info", "warn", "error"}},
		{level: "info", want: []string{"info", "warn", "error"}},
		{level: "warn", want: []string{"warn", "error"}},
		{level: "error", want: []string{"error"}},
		{level: "bogus", want: []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tt.level, &buf)
			ctx := context.Background()

			logger.Debug(ctx, "m")
			logger.Info(ctx, "m")
			logger.Warn(ctx, "m")
			logger.Error(ctx, "m")

			entries := decodeLines(t, &buf)
			if len(entries) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), len(entries))
			}
			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("entry %d level = %v, want %s", i, e["level"], tt.want[i])
				}
			}
		})
	}
}

func TestLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := logger.WithSource("s")
			for j := 0; j < 50; j++ {
				src.Info(context.Background(), "tick", Field{Key: "n", Value: i*100 + j})
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 1000 {
		t.Fatalf("expected 1000 entries, got %d", got)
	}
}

func TestParseLogLevel_RoundTrip(t *testing.T) {
	for _, lvl := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if got := ParseLogLevel(lvl.String()); got != lvl {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", lvl.String(), got, lvl)
		}
	}
}
