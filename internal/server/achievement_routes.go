package server

import (
	"net/http"
	"time"

	"github.com/brk3/habitstats/internal/analytics"
	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/internal/storage"
	"github.com/brk3/habitstats/pkg/habit"
)

// grantAchievements unlocks the streak milestones h has reached that the
// user doesn't hold yet. Failures are logged and never fail the log write.
func (s *Server) grantAchievements(r *http.Request, userID string, h habit.Habit, loc *time.Location) []habit.Achievement {
	ctx := r.Context()
	log := logger.With("user_id", userID, "habit_id", h.ID)

	logs, err := s.store.ListLogs(userID, h.ID, storage.LogRange{})
	if err != nil {
		log.ErrorContext(ctx, "Failed to list logs for achievements", "error", err)
		return []habit.Achievement{}
	}
	now := s.now()
	earned, err := analytics.NewAt(now, loc).Earned(h, logs, now.UTC())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to compute achievements", "user_id", userID, "habit_id", h.ID, "error", err)
		return []habit.Achievement{}
	}
	if len(earned) == 0 {
		return []habit.Achievement{}
	}

	granted, err := s.store.GrantAchievements(userID, earned)
	if err != nil {
		log.ErrorContext(ctx, "Failed to store achievements", "error", err)
		return []habit.Achievement{}
	}
	for _, a := range granted {
		achievementsUnlockedTotal.WithLabelValues(a.ID).Inc()
		log.Info("Achievement unlocked", "achievement", a.ID, "streak", a.Streak)
	}
	if granted == nil {
		granted = []habit.Achievement{}
	}
	return granted
}

func (s *Server) listAchievements(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	as, err := s.store.ListAchievements(userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list achievements", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if err := writeJSON(w, http.StatusOK, AchievementListResponse{Achievements: as}); err != nil {
		logger.Error("Failed to serialize achievements response", "user_id", userID, "error", err)
	}
}
