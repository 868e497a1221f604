package web

// handlers_common.go holds request parsing helpers shared across handlers
// and the health endpoint.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/csvtotext/internal/core"
)

// textRequest is the JSON body of the normalize and validate endpoints.
type textRequest struct {
	Text     string `json:"text"`
	Existing string `json:"existing,omitempty"`
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// readTextRequest accepts either a JSON textRequest or a plain-text body.
// The body is capped at the per-file size limit.
func (s *Server) readTextRequest(w http.ResponseWriter, r *http.Request) (textRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Conversion.MaxFileSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req textRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return textRequest{}, bodyError(err)
		}
		return req, nil
	}

	data, err := io.ReadAll(core.NewBOMSkippingReader(r.Body))
	if err != nil {
		return textRequest{}, bodyError(err)
	}
	return textRequest{Text: string(data)}, nil
}

// bodyError maps a body read failure to a core error.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: more than %d bytes", core.ErrFileTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %v", errInvalidRequest, err)
}

// healthResponse reports readiness and optional dependencies.
type healthResponse struct {
	Status      string             `json:"status"`
	History     bool               `json:"history"`
	Cache       bool               `json:"cache"`
	Conversions core.LimiterStatus `json:"conversions"`
}

// handleHealth reports liveness along with limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		History:     s.service.HistoryEnabled(),
		Cache:       s.service.CacheEnabled(),
		Conversions: s.service.LimiterStatus(),
	})
}
