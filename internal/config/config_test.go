package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Chunking.MaxLines != 20 {
		t.Fatalf("chunk max lines default")
	}
	if cfg.Chunking.MaxBytes != 8<<10 {
		t.Fatalf("chunk max bytes default")
	}
	if cfg.Chunking.FlushIntervalMs != 500 {
		t.Fatalf("flush interval default")
	}
	if cfg.Retrieval.ReadMaxBytes != 1<<20 {
		t.Fatalf("read max bytes default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logpiper.json")
	data := []byte(`{"dataDir":"/tmp/lp","chunking":{"maxLines":10,"maxBytes":1024,"flushIntervalMs":250}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/lp" {
		t.Fatalf("expected /tmp/lp, got %s", cfg.DataDir)
	}
	if cfg.Chunking.MaxLines != 10 {
		t.Fatalf("expected 10")
	}
	// untouched sections keep defaults
	if cfg.Retrieval.DefaultLimit != 50 {
		t.Fatalf("expected retrieval defaults preserved")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logpiper.yaml")
	data := []byte("dataDir: /tmp/lp\nchunking:\n  maxLines: 5\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/lp" {
		t.Fatalf("yaml dataDir")
	}
	if cfg.Chunking.MaxLines != 5 {
		t.Fatalf("yaml maxLines")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("LOGPIPER_DATA_DIR", "/env/data")
	os.Setenv("LOGPIPER_CHUNK_MAX_LINES", "7")
	os.Setenv("LOGPIPER_CHUNK_FLUSH_INTERVAL_MS", "100")
	t.Cleanup(func() {
		os.Unsetenv("LOGPIPER_DATA_DIR")
		os.Unsetenv("LOGPIPER_CHUNK_MAX_LINES")
		os.Unsetenv("LOGPIPER_CHUNK_FLUSH_INTERVAL_MS")
	})
	FromEnv(&cfg)
	if cfg.DataDir != "/env/data" {
		t.Fatalf("env override data dir")
	}
	if cfg.Chunking.MaxLines != 7 {
		t.Fatalf("env override max lines")
	}
	if cfg.Chunking.FlushIntervalMs != 100 {
		t.Fatalf("env override flush interval")
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	cfg := Default()
	os.Setenv("LOGPIPER_CHUNK_MAX_LINES", "not-a-number")
	t.Cleanup(func() { os.Unsetenv("LOGPIPER_CHUNK_MAX_LINES") })
	FromEnv(&cfg)
	if cfg.Chunking.MaxLines != 20 {
		t.Fatalf("garbage env value should be ignored")
	}
}
