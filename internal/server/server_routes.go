package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/internal/storage"
	"github.com/brk3/habitstats/pkg/habit"
	"github.com/brk3/habitstats/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const timezoneHeader = "X-Timezone"

// requestLocation picks the calendar for "today": the X-Timezone header, then
// the tz query parameter, then the configured default.
func (s *Server) requestLocation(r *http.Request) (*time.Location, error) {
	name := r.Header.Get(timezoneHeader)
	if name == "" {
		name = r.URL.Query().Get("tz")
	}
	if name == "" {
		return s.loc, nil
	}
	return time.LoadLocation(name)
}

// storageError maps a store error onto a response.
func storageError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	writeError(w, http.StatusInternalServerError, "storage error")
}

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
	}
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	var h habit.Habit
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
		logger.Warn("Invalid JSON in create habit request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	now := s.now()
	h.ID = uuid.NewString()
	h.UserID = userID
	h.CreatedAt = now
	h.UpdatedAt = now
	h.ApplyDefaults()
	if err := h.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("Storing habit", "user_id", userID, "habit_id", h.ID, "habit_name", h.Name)
	if err := s.store.PutHabit(userID, h); err != nil {
		logger.Error("Failed to store habit", "user_id", userID, "habit_id", h.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	if err := writeJSON(w, http.StatusCreated, h); err != nil {
		logger.Error("Failed to serialize create habit response", "user_id", userID, "error", err)
	}
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	logger.Debug("Listing habits", "user_id", userID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}
	habits, err := s.store.ListHabits(userID)
	if err != nil {
		logger.Error("Failed to list habits", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	includeArchived := r.URL.Query().Get("archived") == "true"
	out := make([]habit.Habit, 0, len(habits))
	active := 0
	for _, h := range habits {
		if !h.Archived {
			active++
		}
		if includeArchived || !h.Archived {
			out = append(out, h)
		}
	}
	UpdateActiveHabitsForUser(userID, active)

	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: out}); err != nil {
		logger.Error("Failed to serialize habit list response", "user_id", userID, "error", err)
	}
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}

	h, err := s.store.GetHabit(userID, habitID)
	if err != nil {
		logger.Debug("Failed to get habit", "user_id", userID, "habit_id", habitID, "error", err)
		storageError(w, err, "habit not found")
		return
	}
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize get habit response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

// updateHabit applies the fields present in the body on top of the stored
// habit. Identity and creation time can't be changed.
func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}

	existing, err := s.store.GetHabit(userID, habitID)
	if err != nil {
		storageError(w, err, "habit not found")
		return
	}

	updated := existing
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	if err := updated.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.PutHabit(userID, updated); err != nil {
		logger.Error("Failed to update habit", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	logger.Info("Habit updated", "user_id", userID, "habit_id", habitID, "archived", updated.Archived)
	if err := writeJSON(w, http.StatusOK, updated); err != nil {
		logger.Error("Failed to serialize update habit response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	logger.Info("Deleting habit", "user_id", userID, "habit_id", habitID)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}

	if err := s.store.DeleteHabit(userID, habitID); err != nil {
		logger.Error("Failed to delete habit", "user_id", userID, "habit_id", habitID, "error", err)
		storageError(w, err, "habit not found")
		return
	}
	logger.Info("Habit deleted successfully", "user_id", userID, "habit_id", habitID)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}

	var rng storage.LogRange
	for param, dst := range map[string]*habit.Day{"from": &rng.From, "to": &rng.To} {
		v := r.URL.Query().Get(param)
		if v == "" {
			continue
		}
		d, err := habit.ParseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		*dst = d
	}

	if _, err := s.store.GetHabit(userID, habitID); err != nil {
		storageError(w, err, "habit not found")
		return
	}
	logs, err := s.store.ListLogs(userID, habitID, rng)
	if err != nil {
		logger.Error("Failed to list logs", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if err := writeJSON(w, http.StatusOK, LogListResponse{HabitID: habitID, Logs: logs}); err != nil {
		logger.Error("Failed to serialize log list response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

// putLog creates or replaces the log for the habit on the given day. A
// missing day means today in the request's timezone.
func (s *Server) putLog(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}
	loc, err := s.requestLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	var l habit.Log
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	l.HabitID = habitID
	l.UserID = userID
	l.UpdatedAt = s.now()
	if l.Day == "" {
		l.Day = habit.Today(loc, l.UpdatedAt)
	}
	if err := l.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h, err := s.store.GetHabit(userID, habitID)
	if err != nil {
		storageError(w, err, "habit not found")
		return
	}
	if err := s.store.PutLog(userID, l); err != nil {
		logger.Error("Failed to store log", "user_id", userID, "habit_id", habitID, "day", l.Day, "error", err)
		writeError(w, http.StatusInternalServerError, "database write failed")
		return
	}
	logsWrittenTotal.WithLabelValues(string(l.Status)).Inc()
	logger.Info("Log stored", "user_id", userID, "habit_id", habitID, "day", l.Day, "status", l.Status)

	resp := PutLogResponse{Log: l, Unlocked: s.grantAchievements(r, userID, h, loc)}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize log response", "user_id", userID, "habit_id", habitID, "error", err)
	}
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || habitID == "" {
		writeError(w, http.StatusBadRequest, "user id and habit id are required")
		return
	}
	day, err := habit.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteLog(userID, habitID, day); err != nil {
		storageError(w, err, "log not found")
		return
	}
	logger.Info("Log deleted", "user_id", userID, "habit_id", habitID, "day", day)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportData(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	habits, err := s.store.ListHabits(userID)
	if err != nil {
		logger.Error("Failed to list habits for export", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	out := ExportResponse{ExportedAt: s.now().UTC(), UserID: userID, Habits: habits, Logs: []habit.Log{}}
	for _, h := range habits {
		logs, err := s.store.ListLogs(userID, h.ID, storage.LogRange{})
		if err != nil {
			logger.Error("Failed to list logs for export", "user_id", userID, "habit_id", h.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		out.Logs = append(out.Logs, logs...)
	}

	w.Header().Set("Content-Disposition", "attachment; filename=habit-tracker-data.json")
	if err := writeJSON(w, http.StatusOK, out); err != nil {
		logger.Error("Failed to serialize export", "user_id", userID, "error", err)
	}
}

// getTodayLogs returns the logs for today, in the request's timezone, across
// all of the user's habits.
func (s *Server) getTodayLogs(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}
	loc, err := s.requestLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}
	today := habit.Today(loc, s.now())

	habits, err := s.store.ListHabits(userID)
	if err != nil {
		logger.Error("Failed to list habits for today's logs", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	out := TodayLogsResponse{Date: today, Logs: []habit.Log{}}
	for _, h := range habits {
		logs, err := s.store.ListLogs(userID, h.ID, storage.LogRange{From: today, To: today})
		if err != nil {
			logger.Error("Failed to list today's logs", "user_id", userID, "habit_id", h.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		out.Logs = append(out.Logs, logs...)
	}

	if err := writeJSON(w, http.StatusOK, out); err != nil {
		logger.Error("Failed to serialize today's logs", "user_id", userID, "error", err)
	}
}
