// Package config defines service configuration and its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig; loader failures wrap ErrLoadConfig.
package config

import (
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UploadDir is where uploads are staged while a request is scored.
	UploadDir string `koanf:"upload_dir"`

	// AllowedExtensions lists accepted upload extensions without the dot.
	AllowedExtensions []string `koanf:"allowed_extensions"`

	// MaxUploadBytes caps the size of a single upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// SheetName picks the worksheet to read; empty means the first one.
	SheetName string `koanf:"sheet_name"`

	// QueueSize bounds the number of scoring jobs waiting for a worker.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// JobTimeoutMS bounds how long one upload may spend queued and scoring.
	JobTimeoutMS int `koanf:"job_timeout_ms"`

	// StrictCoVNormalization fails the ranking when every product shares the
	// same CoV instead of scoring the stability factor as 0.
	StrictCoVNormalization bool `koanf:"strict_cov_normalization"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		UploadDir:         "/tmp/uploads",
		AllowedExtensions: []string{"xlsx", "xls"},
		MaxUploadBytes:    16 << 20,
		QueueSize:         64,
		WorkerCount:       runtime.NumCPU(),
		JobTimeoutMS:      30_000,
	}
}

// normalizeExtensions lower-cases extensions, strips dots and splits
// comma-separated values coming from a single environment variable.
func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(part)), ".")
			if ext == "" {
				continue
			}
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}
	return out
}
