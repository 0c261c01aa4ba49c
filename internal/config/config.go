package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DataDir   string          `json:"dataDir" yaml:"dataDir"`
	Chunking  ChunkingConfig  `json:"chunking" yaml:"chunking"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Detect    DetectConfig    `json:"detect" yaml:"detect"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify"`
	Cleanup   CleanupConfig   `json:"cleanup" yaml:"cleanup"`
}

// ChunkingConfig tunes how raw output is grouped into log records.
type ChunkingConfig struct {
	MaxLines        int `json:"maxLines" yaml:"maxLines"`
	MaxBytes        int `json:"maxBytes" yaml:"maxBytes"`
	FlushIntervalMs int `json:"flushIntervalMs" yaml:"flushIntervalMs"`
}

// RetrievalConfig tunes read-side limits and budgets.
type RetrievalConfig struct {
	DefaultLimit     int `json:"defaultLimit" yaml:"defaultLimit"`
	ReadMaxBytes     int `json:"readMaxBytes" yaml:"readMaxBytes"`
	ResponseMaxBytes int `json:"responseMaxBytes" yaml:"responseMaxBytes"`
}

// DetectConfig tunes the error-pattern classifier.
type DetectConfig struct {
	CooldownMs int `json:"cooldownMs" yaml:"cooldownMs"`
}

// NotifyConfig tunes notification batching and rate limiting.
type NotifyConfig struct {
	BatchWindowMs int `json:"batchWindowMs" yaml:"batchWindowMs"`
	MinIntervalMs int `json:"minIntervalMs" yaml:"minIntervalMs"`
	MaxBatch      int `json:"maxBatch" yaml:"maxBatch"`
}

// CleanupConfig tunes age-based session cleanup.
type CleanupConfig struct {
	MaxSessionAgeHours int `json:"maxSessionAgeHours" yaml:"maxSessionAgeHours"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			MaxLines:        20,
			MaxBytes:        8 << 10,
			FlushIntervalMs: 500,
		},
		Retrieval: RetrievalConfig{
			DefaultLimit:     50,
			ReadMaxBytes:     1 << 20,
			ResponseMaxBytes: 87_500,
		},
		Detect: DetectConfig{
			CooldownMs: 30_000,
		},
		Notify: NotifyConfig{
			BatchWindowMs: 2_000,
			MinIntervalMs: 5_000,
			MaxBatch:      10,
		},
		Cleanup: CleanupConfig{
			MaxSessionAgeHours: 24 * 7,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
