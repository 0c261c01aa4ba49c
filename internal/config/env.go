package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LOGPIPER_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LOGPIPER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	overlayInt("LOGPIPER_CHUNK_MAX_LINES", &cfg.Chunking.MaxLines)
	overlayInt("LOGPIPER_CHUNK_MAX_BYTES", &cfg.Chunking.MaxBytes)
	overlayInt("LOGPIPER_CHUNK_FLUSH_INTERVAL_MS", &cfg.Chunking.FlushIntervalMs)
	overlayInt("LOGPIPER_READ_DEFAULT_LIMIT", &cfg.Retrieval.DefaultLimit)
	overlayInt("LOGPIPER_READ_MAX_BYTES", &cfg.Retrieval.ReadMaxBytes)
	overlayInt("LOGPIPER_RESPONSE_MAX_BYTES", &cfg.Retrieval.ResponseMaxBytes)
	overlayInt("LOGPIPER_DETECT_COOLDOWN_MS", &cfg.Detect.CooldownMs)
	overlayInt("LOGPIPER_NOTIFY_BATCH_WINDOW_MS", &cfg.Notify.BatchWindowMs)
	overlayInt("LOGPIPER_NOTIFY_MIN_INTERVAL_MS", &cfg.Notify.MinIntervalMs)
	overlayInt("LOGPIPER_NOTIFY_MAX_BATCH", &cfg.Notify.MaxBatch)
	overlayInt("LOGPIPER_CLEANUP_MAX_SESSION_AGE_HOURS", &cfg.Cleanup.MaxSessionAgeHours)
}

func overlayInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
