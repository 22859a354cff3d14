package server

import (
	"net/http"
	"time"

	"github.com/brk3/habitstats/internal/analytics"
	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/internal/storage"
	"github.com/brk3/habitstats/pkg/habit"
	"github.com/go-chi/chi/v5"
)

// engineFor pins "today" for the whole request.
func (s *Server) engineFor(r *http.Request) (*analytics.Engine, error) {
	loc, err := s.requestLocation(r)
	if err != nil {
		return nil, err
	}
	return analytics.NewAt(s.now(), loc), nil
}

// activeSnapshot reads the user's non-archived habits and all their logs.
func (s *Server) activeSnapshot(userID string) ([]habit.Habit, map[string][]habit.Log, error) {
	all, err := s.store.ListHabits(userID)
	if err != nil {
		return nil, nil, err
	}
	habits := make([]habit.Habit, 0, len(all))
	logs := make(map[string][]habit.Log, len(all))
	for _, h := range all {
		if h.Archived {
			continue
		}
		hl, err := s.store.ListLogs(userID, h.ID, storage.LogRange{})
		if err != nil {
			return nil, nil, err
		}
		habits = append(habits, h)
		logs[h.ID] = hl
	}
	return habits, logs, nil
}

// computeError maps an engine error onto a response. Stored records that
// fail validation are a server-side problem, not the caller's.
func computeError(w http.ResponseWriter, err error) {
	if habit.IsValidationError(err) {
		writeError(w, http.StatusInternalServerError, "stored data failed validation")
		return
	}
	writeError(w, http.StatusInternalServerError, "error computing analytics")
}

func (s *Server) getOverview(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}
	engine, err := s.engineFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	habits, logs, err := s.activeSnapshot(userID)
	if err != nil {
		logger.Error("Failed to load habits for overview", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	UpdateActiveHabitsForUser(userID, len(habits))

	start := time.Now()
	overview, err := engine.Overview(habits, logs)
	observeAnalytics("overview", start)
	if err != nil {
		logger.Error("Failed to compute overview", "user_id", userID, "error", err)
		computeError(w, err)
		return
	}

	logger.Debug("Computed overview", "user_id", userID, "today", engine.Today(), "habits", overview.TotalHabits)
	if err := writeJSON(w, http.StatusOK, OverviewResponse{Today: engine.Today(), Overview: overview}); err != nil {
		logger.Error("Failed to serialize overview response", "user_id", userID, "error", err)
	}
}

func (s *Server) getAllAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}
	engine, err := s.engineFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	habits, logs, err := s.activeSnapshot(userID)
	if err != nil {
		logger.Error("Failed to load habits for analytics", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	start := time.Now()
	summaries, err := engine.Summaries(habits, logs)
	observeAnalytics("summaries", start)
	if err != nil {
		logger.Error("Failed to compute habit summaries", "user_id", userID, "error", err)
		computeError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, AllAnalyticsResponse{Today: engine.Today(), Analytics: summaries}); err != nil {
		logger.Error("Failed to serialize analytics response", "user_id", userID, "error", err)
	}
}

func (s *Server) getHabitAnalytics(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	logger.Debug("Getting habit analytics", "habit_id", habitID, "user_id", userID)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}
	engine, err := s.engineFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	h, err := s.store.GetHabit(userID, habitID)
	if err != nil {
		storageError(w, err, "habit not found")
		return
	}
	logs, err := s.store.ListLogs(userID, habitID, storage.LogRange{})
	if err != nil {
		logger.Error("Failed to list logs", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	start := time.Now()
	a, err := engine.AnalyzeHabit(h, logs)
	observeAnalytics("habit", start)
	if err != nil {
		logger.Error("Failed to compute habit analytics", "user_id", userID, "habit_id", habitID, "error", err)
		computeError(w, err)
		return
	}

	logger.Debug("Computed habit analytics", "habit_id", habitID, "current", a.CurrentStreak, "longest", a.LongestStreak, "strength", a.StrengthScore)
	if err := writeJSON(w, http.StatusOK, HabitAnalyticsResponse{Today: engine.Today(), Analytics: a}); err != nil {
		logger.Error("Failed to serialize habit analytics response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}
