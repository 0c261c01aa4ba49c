// Package config provides loading and environment overlay for logpiper
// configuration. It exposes a Default() baseline, JSON/YAML file loading,
// and a LOGPIPER_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/logpiper.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
