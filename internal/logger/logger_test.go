package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesJSONWithBoundAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").With("component", "items")
	log.Error("load failed", "status", 500)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if rec["msg"] != "load failed" || rec["component"] != "items" || rec["level"] != "ERROR" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["status"].(float64) != 500 {
		t.Fatalf("expected status attr, got %v", rec["status"])
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stock.log")
	log, closer, err := Open(path, "info")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("unexpected log contents: %q", b)
	}
}
