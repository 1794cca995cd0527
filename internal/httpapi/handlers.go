package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/coinsight/coinsight/internal/provider"
	"github.com/coinsight/coinsight/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"watchlist": s.watchlist != nil,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), symbol)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("analysis failed")
		writeError(w, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// upstreamStatus maps provider failures onto API status codes: unknown
// symbols surface as 404, everything else as 502.
func upstreamStatus(err error) int {
	var pe *provider.ProviderError
	if errors.As(err, &pe) && pe.Type == provider.ErrTypeHTTP && pe.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (s *Server) handleWatchlistList(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist store not configured")
		return
	}
	entries, err := s.watchlist.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("watchlist list failed")
		writeError(w, http.StatusInternalServerError, "watchlist unavailable")
		return
	}
	if entries == nil {
		entries = []store.WatchlistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist store not configured")
		return
	}
	entry, err := s.watchlist.Add(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		s.log.Error().Err(err).Msg("watchlist add failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist store not configured")
		return
	}
	err := s.watchlist.Remove(r.Context(), mux.Vars(r)["symbol"])
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "symbol not on watchlist")
	case err != nil:
		s.log.Error().Err(err).Msg("watchlist remove failed")
		writeError(w, http.StatusInternalServerError, "watchlist unavailable")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
