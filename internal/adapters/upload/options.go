package upload

import "github.com/okian/demandrank/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithDir sets the directory uploads are written to.
func WithDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithMaxBytes caps the size of a single upload. Zero or less disables the cap.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// WithAllowedExtensions sets the accepted extensions, without dots.
func WithAllowedExtensions(exts []string) Option {
	return func(s *Store) {
		if len(exts) > 0 {
			s.allowed = exts
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
