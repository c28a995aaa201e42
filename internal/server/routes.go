package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr/internal/game"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_start_time"`
	RespEndTime   int64 `json:"resp_end_time"`
	NetRespTime   int64 `json:"net_resp_time"`
	Data          any   `json:"data"`
}

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms/{roomId}", s.GetRoomHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/results", s.GetResultsHandler).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/ws", s.ws)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin(r.Header.Get("Origin")))
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// The upgrader checks websocket origins itself.
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	if len(s.origins) == 0 || slices.Contains(s.origins, "*") {
		return "*"
	}
	if slices.Contains(s.origins, origin) {
		return origin
	}
	return s.origins[0]
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	data := map[string]any{
		"status": "ok",
		"rooms":  s.engine.Registry().Count(),
	}
	status := http.StatusOK
	if s.results != nil {
		db := s.results.Health(r.Context())
		data["database"] = db
		if db["status"] != "up" {
			data["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	writeResponse(w, start, status, data)
}

func (s *Server) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	roomID := mux.Vars(r)["roomId"]

	summary, err := s.engine.RoomSummary(roomID)
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		writeResponse(w, start, http.StatusNotFound, "room not found")
	case err != nil:
		log.Error().Err(err).Str("room", roomID).Msg("room summary failed")
		writeResponse(w, start, http.StatusInternalServerError, "internal server error")
	default:
		writeResponse(w, start, http.StatusOK, summary)
	}
}

func (s *Server) GetResultsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if s.results == nil {
		writeResponse(w, start, http.StatusServiceUnavailable, "results are not recorded")
		return
	}

	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeResponse(w, start, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxResultsLimit)
	}

	games, err := s.results.RecentResults(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("loading recent results failed")
		writeResponse(w, start, http.StatusInternalServerError, "internal server error")
		return
	}
	writeResponse(w, start, http.StatusOK, games)
}

func writeResponse(w http.ResponseWriter, start time.Time, status int, data any) {
	end := time.Now()
	resp := Response{
		StatusCode:    status,
		RespStartTime: start.UnixMilli(),
		RespEndTime:   end.UnixMilli(),
		NetRespTime:   end.Sub(start).Milliseconds(),
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("encoding response failed")
	}
}
