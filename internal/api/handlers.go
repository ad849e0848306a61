package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelkov/staybook/internal/destination"
	"github.com/avelkov/staybook/internal/storage"
)

// actionSelect is the only analytics action the API accepts.
const actionSelect = "select"

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	resolver  DestinationResolver
	selection SelectionRecorder
	seeder    CountrySeeder
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(resolver DestinationResolver, selection SelectionRecorder, seeder CountrySeeder, log *slog.Logger) *Handlers {
	return &Handlers{
		resolver:  resolver,
		selection: selection,
		seeder:    seeder,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// autocompleteResponse wraps the ranked projection list.
type autocompleteResponse struct {
	Destinations []destination.Projection `json:"destinations"`
}

// Autocomplete handles GET /api/v1/destinations/autocomplete?q=.
// Queries below the minimum length return an empty list, not an error.
func (h *Handlers) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.resolver.Resolve(r.Context(), query)
	if err != nil {
		h.log.Error("destination resolution failed", "query", query, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	projections := make([]destination.Projection, 0, len(results))
	for _, d := range results {
		projections = append(projections, d.Projection())
	}

	writeJSON(w, http.StatusOK, autocompleteResponse{Destinations: projections})
}

// analyticsRequest is the body of a selection event.
type analyticsRequest struct {
	DestinationID string `json:"destinationId"`
	Action        string `json:"action"`
}

// RecordSelection handles POST /api/v1/destinations/analytics.
// Only action "select" is accepted; it bumps the destination's search
// counter and refreshes last_used. This is the authoritative "user chose
// this" signal, separate from a destination merely appearing in results.
func (h *Handlers) RecordSelection(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.DestinationID == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: destinationId and action")
		return
	}

	if req.Action != actionSelect {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid action %q, supported actions: %s", req.Action, actionSelect))
		return
	}

	if err := h.selection.IncrementSearchCount(r.Context(), req.DestinationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "destination not found")
			return
		}
		h.log.Error("recording selection failed", "destinationId", req.DestinationID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// seedRequest is the body of a seeding run.
type seedRequest struct {
	CountryCode string `json:"countryCode"`
}

// SeedCountry handles POST /api/v1/destinations/seed.
// Operational endpoint: loads every known city of the country into the
// local store and reports how many records were processed.
func (h *Handlers) SeedCountry(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.CountryCode == "" {
		writeError(w, http.StatusBadRequest, "country code is required")
		return
	}

	count, err := h.seeder.SeedCountry(r.Context(), req.CountryCode)
	if err != nil {
		h.log.Error("seeding failed", "countryCode", req.CountryCode, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to seed destinations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("seeded %d destinations for %s", count, req.CountryCode),
		"count":   count,
	})
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. Returns 200 when both respond, 503 otherwise.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
