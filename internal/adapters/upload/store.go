// Package upload persists uploaded spreadsheets to a scratch directory for
// the duration of a request.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/demandrank/internal/adapters/sheet"
	"github.com/okian/demandrank/pkg/logger"
	"github.com/okian/demandrank/pkg/metrics"
)

const (
	defaultDir      = "/tmp/uploads"
	defaultMaxBytes = 16 << 20
	dirPerm         = 0o750
	filePerm        = 0o600
)

// Upload is a file saved by Store.Save.
type Upload struct {
	Path     string // absolute location on disk
	Filename string // name as sent by the client
	Size     int64
}

// Store writes uploads under a directory using collision-free names.
type Store struct {
	dir      string
	maxBytes int64
	allowed  []string
	log      logger.Logger
}

// New creates a Store. Defaults: /tmp/uploads, 16 MiB, xlsx and xls.
func New(opts ...Option) *Store {
	s := &Store{
		dir:      defaultDir,
		maxBytes: defaultMaxBytes,
		allowed:  []string{sheet.ExtXLSX, sheet.ExtXLS},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("upload")
	}
	return s
}

// Allowed reports whether filename has one of the accepted extensions.
func (s *Store) Allowed(filename string) bool {
	if !strings.Contains(filename, ".") {
		return false
	}
	return slices.Contains(s.allowed, sheet.Ext(filename))
}

// AllowedExtensions returns the accepted extensions.
func (s *Store) AllowedExtensions() []string {
	return slices.Clone(s.allowed)
}

// Save copies r to <dir>/<uuid>-<secure filename>. A partially written file
// is removed on failure.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (Upload, error) {
	name := SecureFilename(filename)
	if name == "" {
		return Upload{}, ErrEmptyFilename
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return Upload{}, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+"-"+name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return Upload{}, fmt.Errorf("create upload file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("write upload: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close upload: %w", closeErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		err = fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		return Upload{}, err
	}

	metrics.RecordUploadBytes(n)
	s.log.Debug(ctx, "upload saved",
		logger.String("filename", filename),
		logger.String("path", path),
		logger.Int("bytes", int(n)),
	)
	return Upload{Path: path, Filename: filename, Size: n}, nil
}

// Remove deletes a saved upload. Removing a missing file is not an error.
func (s *Store) Remove(ctx context.Context, u Upload) error {
	if u.Path == "" {
		return nil
	}
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn(ctx, "failed to remove upload", logger.String("path", u.Path), logger.Error(err))
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
