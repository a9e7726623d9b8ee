package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/demandrank/internal/adapters/upload"
	service "github.com/okian/demandrank/internal/app"
	"github.com/okian/demandrank/internal/domain/scoring"
	"github.com/okian/demandrank/internal/domain/types"
	"github.com/okian/demandrank/pkg/logger"
)

const (
	defaultMaxUploadBytes = 16 << 20
	multipartMemory       = 1 << 20
	formField             = "file"
)

// Client-facing messages of POST /upload.
var (
	errNoFilePart     = errors.New("No file part")
	errNoSelectedFile = errors.New("No selected file")
	errInternal       = errors.New("Internal Server Error")
)

// UploadHandler handles spreadsheet uploads.
type UploadHandler struct {
	deps     Dependencies
	maxBytes int64
	logger   logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Dependencies, maxBytes int64, l logger.Logger) *UploadHandler {
	return &UploadHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

// HandleUpload handles POST /upload requests: a multipart form with the
// spreadsheet in the "file" field.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, nil)
		return
	}

	// Multipart framing takes a little room beyond the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(r.Context(), w, http.StatusRequestEntityTooLarge, WrapKind(op, ErrTooLarge, err))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) && !errors.Is(err, http.ErrMissingBoundary) {
			h.fail(r.Context(), w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		// A file part sent without a file name is parsed as a plain value.
		msg := errNoFilePart
		if r.MultipartForm != nil {
			if _, ok := r.MultipartForm.Value[formField]; ok {
				msg = errNoSelectedFile
			}
		}
		h.fail(r.Context(), w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, msg))
		return
	}
	defer file.Close()

	if !h.deps.Allowed(header.Filename) {
		msg := fmt.Errorf("Allowed file types are %s", strings.Join(h.deps.AllowedExtensions(), ", "))
		h.fail(r.Context(), w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, msg))
		return
	}

	ranking, err := h.deps.RankUpload(r.Context(), header.Filename, file)
	if err != nil {
		status, apiErr := classify(op, err)
		h.fail(r.Context(), w, status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, types.RankingResponse{
		Success:  true,
		Data:     ranking.Entries(),
		Filename: upload.SecureFilename(header.Filename),
	})
}

// classify maps a ranking failure to a status and a client-safe error.
func classify(op string, err error) (int, error) {
	var verr *scoring.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, WrapKind(op, ErrValidation, err)
	case errors.Is(err, service.ErrBusy):
		return http.StatusTooManyRequests, WrapKind(op, ErrBackpressure, service.ErrBusy)
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, WrapKind(op, ErrTooLarge, err)
	case errors.Is(err, service.ErrNotAllowed), errors.Is(err, upload.ErrEmptyFilename):
		return http.StatusBadRequest, WrapKind(op, ErrBadRequest, err)
	default:
		return http.StatusInternalServerError, &Error{Op: op, Kind: ErrInternal, Err: &hidden{public: errInternal, cause: err}}
	}
}

// hidden shows clients a generic message while keeping the cause for logs.
type hidden struct {
	public error
	cause  error
}

func (h *hidden) Error() string { return h.public.Error() }
func (h *hidden) Unwrap() error { return h.cause }

func (h *UploadHandler) fail(ctx context.Context, w http.ResponseWriter, status int, err error) {
	fields := []logger.Field{
		logger.Int("status", status),
		logger.String("op", Trace(err)),
		logger.Error(err),
	}
	var hid *hidden
	if errors.As(err, &hid) {
		fields = append(fields, logger.String("cause", hid.cause.Error()))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(ctx, "upload failed", fields...)
	} else {
		h.logger.Warn(ctx, "upload rejected", fields...)
	}
	writeError(w, status, err)
}
