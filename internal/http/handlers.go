package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/scheduler"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		respondWithJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Scheduler: s.Scheduler.State().String(),
			Players:   len(s.Roster.Players()),
		})
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Roster.Players())
	}
}

// LeaderboardHandler serves the current standings, best rank first.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.Roster.Standings())
	}
}

// CheckHandler runs a poll cycle synchronously and reports what it found.
func (s *Server) CheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		isDryRun := isDryRunFromContext(r)
		log.Info("Manual poll cycle requested", "dryRun", isDryRun)

		// The cycle outlives a disconnecting client so its state commit is never cut short.
		result, err := s.Scheduler.Trigger(context.WithoutCancel(r.Context()), isDryRun)
		if errors.Is(err, scheduler.ErrCycleInProgress) {
			http.Error(w, "A poll cycle is already in progress", http.StatusConflict)
			return
		}
		if err != nil {
			log.Error("Manual poll cycle failed", "error", err)
			http.Error(w, "Failed to run poll cycle", http.StatusInternalServerError)
			return
		}

		respondWithJSON(w, http.StatusOK, checkResponse{
			CycleID:    result.CycleID,
			Alerts:     result.Alerts,
			Delivered:  result.Delivered,
			TimedOut:   result.TimedOut,
			DurationMS: result.Duration.Milliseconds(),
			DryRun:     isDryRun,
		})
	}
}

func respondWithJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
