package web

import (
	"net/http"

	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/go-chi/chi/v5"
)

// defaultHistoryLimit is used when ?limit is missing or invalid.
const defaultHistoryLimit = 20

// handleListHistory returns recent conversions, newest first.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", defaultHistoryLimit)

	records, err := s.service.RecentConversions(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if records == nil {
		records = []core.ConversionRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversions": records,
		"count":       len(records),
	})
}

// handleGetHistory returns one recorded conversion.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.service.GetConversion(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}
