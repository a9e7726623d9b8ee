package sampleorders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/demandrank/internal/domain/types"
)

const defaultTimeout = 60 * time.Second

// Client uploads workbooks to a demandrank server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Submit posts the file at path to /upload and decodes the ranking.
func (c *Client) Submit(ctx context.Context, path string) (types.RankingResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RankingResponse{}, fmt.Errorf("read %s: %w", path, err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return types.RankingResponse{}, fmt.Errorf("create form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return types.RankingResponse{}, fmt.Errorf("write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return types.RankingResponse{}, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return types.RankingResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return types.RankingResponse{}, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.RankingResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e types.ErrorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return types.RankingResponse{}, &StatusError{Code: resp.StatusCode, Message: msg}
	}

	var out types.RankingResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.RankingResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
