package service

import (
	"time"

	"github.com/okian/demandrank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ranking workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets how many uploads may wait for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobTimeout bounds the time a worker spends on one upload.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithUploadDir sets where uploads are stored while they are ranked.
func WithUploadDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.uploadDir = dir
		}
	}
}

// WithMaxUploadBytes caps the size of one upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithAllowedExtensions sets the accepted upload extensions, without dots.
func WithAllowedExtensions(exts []string) Option {
	return func(s *Service) {
		if len(exts) > 0 {
			s.allowedExtensions = exts
		}
	}
}

// WithSheetName selects the worksheet to read. Empty means the first one.
func WithSheetName(name string) Option {
	return func(s *Service) {
		s.sheetName = name
	}
}

// WithStrictCoVNormalization fails rankings whose products all share one CoV.
func WithStrictCoVNormalization(strict bool) Option {
	return func(s *Service) {
		s.strictCoV = strict
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
