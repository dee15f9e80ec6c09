package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unsetenv %s: %v", k, err)
		}
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, old)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "STOCK_API_URL", "STOCK_LOG_FILE", "STOCK_LOG_LEVEL", "STOCK_REQUEST_TIMEOUT")
	t.Setenv("STOCK_STATE_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:5000/api" {
		t.Fatalf("unexpected api url: %q", cfg.APIURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no timeout by default, got %v", cfg.RequestTimeout)
	}
	if cfg.LogFile != filepath.Join(cfg.StateDir, "stock.log") {
		t.Fatalf("unexpected log file: %q", cfg.LogFile)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STOCK_API_URL", "http://inventory.local/api/")
	t.Setenv("STOCK_STATE_DIR", dir)
	unsetEnv(t, "STOCK_LOG_FILE")
	t.Setenv("STOCK_REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://inventory.local/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout)
	}
}

func TestOverride_MovesDerivedLogFile(t *testing.T) {
	cfg := &Config{APIURL: "http://a/api", StateDir: "/tmp/one"}
	if err := cfg.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := cfg.Override("http://b/api", "/tmp/two"); err != nil {
		t.Fatalf("override: %v", err)
	}
	if cfg.APIURL != "http://b/api" || cfg.StateDir != "/tmp/two" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogFile != filepath.Join("/tmp/two", "stock.log") {
		t.Fatalf("expected derived log file to follow state dir, got %q", cfg.LogFile)
	}

	cfg.LogFile = "/var/log/stock.log"
	if err := cfg.Override("", "/tmp/three"); err != nil {
		t.Fatalf("override: %v", err)
	}
	if cfg.LogFile != "/var/log/stock.log" {
		t.Fatalf("explicit log file should be kept, got %q", cfg.LogFile)
	}
}
