package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brk3/habitstats/pkg/habit"
)

type errorResponse struct {
	Error string `json:"error"`
}

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

type LogListResponse struct {
	HabitID string      `json:"habit_id"`
	Logs    []habit.Log `json:"logs"`
}

// PutLogResponse carries the stored log and any achievements it unlocked.
type PutLogResponse struct {
	Log      habit.Log           `json:"log"`
	Unlocked []habit.Achievement `json:"unlocked"`
}

type TodayLogsResponse struct {
	Date habit.Day   `json:"date"`
	Logs []habit.Log `json:"logs"`
}

type AchievementListResponse struct {
	Achievements []habit.Achievement `json:"achievements"`
}

type OverviewResponse struct {
	Today    habit.Day      `json:"today"`
	Overview habit.Overview `json:"overview"`
}

type HabitAnalyticsResponse struct {
	Today     habit.Day       `json:"today"`
	Analytics habit.Analytics `json:"analytics"`
}

type AllAnalyticsResponse struct {
	Today     habit.Day       `json:"today"`
	Analytics []habit.Summary `json:"analytics"`
}

type ExportResponse struct {
	ExportedAt time.Time     `json:"exported_at"`
	UserID     string        `json:"user_id"`
	Habits     []habit.Habit `json:"habits"`
	Logs       []habit.Log   `json:"logs"`
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	_ = writeJSON(w, code, errorResponse{Error: msg})
}
