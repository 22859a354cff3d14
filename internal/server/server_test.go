package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brk3/habitstats/internal/config"
	"github.com/brk3/habitstats/internal/storage"
	"github.com/brk3/habitstats/pkg/habit"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, st storage.Store) http.Handler {
	t.Helper()
	s, err := New(config.Default(), st, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s.Router()
}

func mockRequest(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal error: %v, body: %s", err, rr.Body.String())
	}
	return v
}

// seedHabit stores a habit created at 09:00 UTC on created, with one
// completed log per day in done.
func seedHabit(t *testing.T, st storage.Store, userID, id string, created habit.Day, done ...habit.Day) {
	t.Helper()
	h := habit.Habit{ID: id, Name: id, CreatedAt: created.Time().Add(9 * time.Hour)}
	h.ApplyDefaults()
	if err := st.PutHabit(userID, h); err != nil {
		t.Fatal(err)
	}
	for _, d := range done {
		l := habit.Log{HabitID: id, Day: d, Status: habit.StatusCompleted, Intensity: 2}
		if err := st.PutLog(userID, l); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListHabits_Empty(t *testing.T) {
	h := newTestServer(t, newMemStore())
	rr := mockRequest(h, http.MethodGet, "/habits/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	resp := decode[HabitListResponse](t, rr)
	if len(resp.Habits) != 0 {
		t.Fatalf("len=%d want 0", len(resp.Habits))
	}
}

func TestCreateHabit_Valid(t *testing.T) {
	st := newMemStore()
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodPost, "/habits/", map[string]any{"name": "guitar", "category": "creativity"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d want 201: %s", rr.Code, rr.Body.String())
	}
	created := decode[habit.Habit](t, rr)
	if created.ID == "" {
		t.Fatal("got empty id")
	}
	if created.Category != habit.CategoryCreativity || created.Frequency != habit.FrequencyDaily {
		t.Fatalf("unexpected habit %+v", created)
	}
	if !created.CreatedAt.Equal(testNow) {
		t.Fatalf("created at %v, want %v", created.CreatedAt, testNow)
	}

	rr = mockRequest(h, http.MethodGet, "/habits/"+created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200 OK", rr.Code)
	}
	if got := decode[habit.Habit](t, rr); got.Name != "guitar" {
		t.Fatalf("got '%s' want guitar", got.Name)
	}
}

func TestCreateHabit_Invalid(t *testing.T) {
	h := newTestServer(t, newMemStore())

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"note": "x"}},
		{"bad category", map[string]any{"name": "guitar", "category": "napping"}},
		{"bad target day", map[string]any{"name": "guitar", "target_days": []int{9}}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := mockRequest(h, http.MethodPost, "/habits/", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("got %d want 400", rr.Code)
			}
		})
	}
}

func TestUpdateHabit_Archive(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodPut, "/habits/run", map[string]any{"archived": true, "id": "hijack"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	updated := decode[habit.Habit](t, rr)
	if !updated.Archived || updated.ID != "run" || updated.Name != "run" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	rr = mockRequest(h, http.MethodGet, "/habits/", nil)
	if got := decode[HabitListResponse](t, rr); len(got.Habits) != 0 {
		t.Fatalf("archived habit listed: %+v", got.Habits)
	}
	rr = mockRequest(h, http.MethodGet, "/habits/?archived=true", nil)
	if got := decode[HabitListResponse](t, rr); len(got.Habits) != 1 {
		t.Fatalf("expected archived habit with ?archived=true, got %d", len(got.Habits))
	}
}

func TestDeleteHabit(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01", "2024-06-02")
	h := newTestServer(t, st)

	if rr := mockRequest(h, http.MethodDelete, "/habits/run", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("got %d want 204", rr.Code)
	}
	if rr := mockRequest(h, http.MethodDelete, "/habits/run", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
}

func TestPutLog_Upserts(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodPut, "/habits/run/logs", map[string]any{"date": "2024-06-14", "status": "partial", "intensity": 1})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	rr = mockRequest(h, http.MethodPut, "/habits/run/logs", map[string]any{"date": "2024-06-14", "status": "completed", "intensity": 3})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}

	rr = mockRequest(h, http.MethodGet, "/habits/run/logs", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	resp := decode[LogListResponse](t, rr)
	if len(resp.Logs) != 1 {
		t.Fatalf("expected 1 log after upsert, got %d", len(resp.Logs))
	}
	if resp.Logs[0].Status != habit.StatusCompleted || resp.Logs[0].Intensity != 3 {
		t.Fatalf("log not replaced: %+v", resp.Logs[0])
	}
}

func TestPutLog_DefaultsToTodayInRequestTimezone(t *testing.T) {
	if _, err := time.LoadLocation("Pacific/Auckland"); err != nil {
		t.Skip("tzdata not available:", err)
	}
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01")
	h := newTestServer(t, st)

	req := httptest.NewRequest(http.MethodPut, "/habits/run/logs", bytes.NewBufferString(`{"status":"completed"}`))
	req.Header.Set(timezoneHeader, "Pacific/Auckland")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	// noon UTC on the 15th is already the 16th in Auckland
	if got := decode[PutLogResponse](t, rr); got.Log.Day != "2024-06-16" {
		t.Fatalf("day = %s, want 2024-06-16", got.Log.Day)
	}
}

func TestPutLog_Invalid(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01")
	h := newTestServer(t, st)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"bad status", "/habits/run/logs", map[string]any{"date": "2024-06-14", "status": "done"}, http.StatusBadRequest},
		{"bad intensity", "/habits/run/logs", map[string]any{"date": "2024-06-14", "status": "completed", "intensity": 7}, http.StatusBadRequest},
		{"bad day", "/habits/run/logs", map[string]any{"date": "14/06/2024", "status": "completed"}, http.StatusBadRequest},
		{"unknown habit", "/habits/walk/logs", map[string]any{"date": "2024-06-14", "status": "completed"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := mockRequest(h, http.MethodPut, tt.path, tt.body); rr.Code != tt.want {
				t.Fatalf("got %d want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestListLogs_Range(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01", "2024-06-01", "2024-06-05", "2024-06-10")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodGet, "/habits/run/logs?from=2024-06-02&to=2024-06-10", nil)
	if got := decode[LogListResponse](t, rr); len(got.Logs) != 2 {
		t.Fatalf("expected 2 logs in range, got %d", len(got.Logs))
	}
	if rr := mockRequest(h, http.MethodGet, "/habits/run/logs?from=June", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400", rr.Code)
	}
}

func TestDeleteLog(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01", "2024-06-14")
	h := newTestServer(t, st)

	if rr := mockRequest(h, http.MethodDelete, "/habits/run/logs/2024-06-14", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("got %d want 204", rr.Code)
	}
	if rr := mockRequest(h, http.MethodDelete, "/habits/run/logs/2024-06-14", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
	if rr := mockRequest(h, http.MethodDelete, "/habits/run/logs/yesterday", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400", rr.Code)
	}
}

func TestHabitAnalytics(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-05",
		"2024-06-05", "2024-06-06", "2024-06-07", "2024-06-08", "2024-06-09",
		"2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14")
	if err := st.PutLog(anonymousUserID, habit.Log{HabitID: "run", Day: "2024-06-10", Status: habit.StatusSkipped}); err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodGet, "/analytics/habits/run", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	resp := decode[HabitAnalyticsResponse](t, rr)
	a := resp.Analytics
	if resp.Today != "2024-06-15" {
		t.Errorf("today = %s", resp.Today)
	}
	if a.CurrentStreak != 4 || a.LongestStreak != 5 || a.CompletionRate != 82 || a.StrengthScore != 39 {
		t.Errorf("unexpected analytics %+v", a)
	}
	if len(a.Heatmap) != 10 || a.Heatmap["2024-06-10"].Status != habit.StatusSkipped {
		t.Errorf("unexpected heatmap %+v", a.Heatmap)
	}
	if len(a.WeeklyTrend) != 2 || a.MonthlyBreakdown["2024-06"] != 9 {
		t.Errorf("unexpected trend %+v / breakdown %+v", a.WeeklyTrend, a.MonthlyBreakdown)
	}

	if rr := mockRequest(h, http.MethodGet, "/analytics/habits/missing", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", rr.Code)
	}
}

func TestOverview_ExcludesArchived(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-13", "2024-06-13", "2024-06-14", "2024-06-15")
	seedHabit(t, st, anonymousUserID, "read", "2024-06-13", "2024-06-13")
	archived := habit.Habit{ID: "old", Name: "old", Archived: true, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := st.PutHabit(anonymousUserID, archived); err != nil {
		t.Fatal(err)
	}
	if err := st.PutLog(anonymousUserID, habit.Log{HabitID: "old", Day: "2024-06-15", Status: habit.StatusCompleted}); err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodGet, "/analytics/overview", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	got := decode[OverviewResponse](t, rr).Overview
	want := habit.Overview{
		TotalHabits:    2,
		CompletedToday: 1,
		// 4 of 2*3 possible
		CompletionRate:   67,
		BestStreak:       3,
		AvgCurrentStreak: 2,
		TotalCompleted:   4,
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestAllAnalytics(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-13", "2024-06-13", "2024-06-14", "2024-06-15")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodGet, "/analytics/habits", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	got := decode[AllAnalyticsResponse](t, rr).Analytics
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if got[0].CurrentStreak != 3 || got[0].CompletionRate != 100 || got[0].StrengthScore != 44 || got[0].LastCompleted != "2024-06-15" {
		t.Fatalf("unexpected summary %+v", got[0])
	}
}

func TestAnalytics_UnknownTimezone(t *testing.T) {
	h := newTestServer(t, newMemStore())
	if rr := mockRequest(h, http.MethodGet, "/analytics/overview?tz=Mars/Olympus", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400", rr.Code)
	}
}

func TestExport(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-13", "2024-06-13", "2024-06-14")
	seedHabit(t, st, anonymousUserID, "read", "2024-06-14", "2024-06-14")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodGet, "/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	got := decode[ExportResponse](t, rr)
	if len(got.Habits) != 2 || len(got.Logs) != 3 {
		t.Fatalf("got %d habits and %d logs", len(got.Habits), len(got.Logs))
	}
	if !got.ExportedAt.Equal(testNow) {
		t.Fatalf("exported at %v", got.ExportedAt)
	}
}

func TestVersion(t *testing.T) {
	h := newTestServer(t, newMemStore())
	rr := mockRequest(h, http.MethodGet, "/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	if got := decode[map[string]string](t, rr); got["version"] == "" {
		t.Fatalf("missing version in %v", got)
	}
}

func TestUpdateHabit_RejectsZeroGoalTarget(t *testing.T) {
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodPut, "/habits/run", map[string]any{"goal_target": 0})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400: %s", rr.Code, rr.Body.String())
	}
	stored, err := st.GetHabit(anonymousUserID, "run")
	if err != nil {
		t.Fatal(err)
	}
	if stored.GoalTarget != 1 {
		t.Fatalf("goal target = %d, want 1", stored.GoalTarget)
	}
}

func TestGetTodayLogs(t *testing.T) {
	if _, err := time.LoadLocation("Pacific/Auckland"); err != nil {
		t.Skip("tzdata not available:", err)
	}
	st := newMemStore()
	seedHabit(t, st, anonymousUserID, "run", "2024-06-01", "2024-06-14", "2024-06-15")
	seedHabit(t, st, anonymousUserID, "read", "2024-06-01", "2024-06-15", "2024-06-16")
	h := newTestServer(t, st)

	rr := mockRequest(h, http.MethodGet, "/logs/today", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200: %s", rr.Code, rr.Body.String())
	}
	got := decode[TodayLogsResponse](t, rr)
	if got.Date != "2024-06-15" || len(got.Logs) != 2 {
		t.Fatalf("UTC: got %s with %d logs", got.Date, len(got.Logs))
	}

	// noon UTC on the 15th is the 16th in Auckland
	rr = mockRequest(h, http.MethodGet, "/logs/today?tz=Pacific/Auckland", nil)
	got = decode[TodayLogsResponse](t, rr)
	if got.Date != "2024-06-16" || len(got.Logs) != 1 || got.Logs[0].HabitID != "read" {
		t.Fatalf("Auckland: got %s with %+v", got.Date, got.Logs)
	}

	if rr := mockRequest(h, http.MethodGet, "/logs/today?tz=Mars/Base", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d want 400 for unknown timezone", rr.Code)
	}
}
