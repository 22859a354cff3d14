package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brk3/habitstats/internal/config"
	"github.com/brk3/habitstats/internal/server"
	"github.com/brk3/habitstats/internal/storage/bolt"
	"github.com/brk3/habitstats/pkg/habit"
)

func setLogFlags(t *testing.T, day, status string, intensity, mood int) {
	t.Helper()
	oldDay, oldStatus, oldIntensity, oldMood := logDay, logStatus, logIntensity, logMood
	t.Cleanup(func() {
		logDay, logStatus, logIntensity, logMood = oldDay, oldStatus, oldIntensity, oldMood
	})
	logDay, logStatus, logIntensity, logMood = day, status, intensity, mood
}

func TestBuildLog(t *testing.T) {
	tests := []struct {
		name      string
		day       string
		status    string
		intensity int
		mood      int
		wantErr   error
	}{
		{"defaults", "", "completed", 2, 0, nil},
		{"explicit day", "2024-06-15", "skipped", 0, 3, nil},
		{"bad day", "15/06/2024", "completed", 2, 0, habit.ErrInvalidDay},
		{"bad status", "", "done", 2, 0, habit.ErrInvalidStatus},
		{"intensity too high", "", "completed", 5, 0, habit.ErrInvalidIntensity},
		{"mood out of range", "", "completed", 2, 6, habit.ErrInvalidMood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLogFlags(t, tt.day, tt.status, tt.intensity, tt.mood)
			l, err := buildLog("run")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if string(l.Day) != tt.day {
				t.Errorf("day = %q want %q", l.Day, tt.day)
			}
		})
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		pct, width int
		want       string
	}{
		{0, 4, "░░░░"},
		{50, 4, "██░░"},
		{100, 4, "████"},
		{150, 4, "████"},
		{-10, 4, "░░░░"},
	}
	for _, tt := range tests {
		if got := bar(tt.pct, tt.width); got != tt.want {
			t.Errorf("bar(%d, %d) = %q want %q", tt.pct, tt.width, got, tt.want)
		}
	}
}

func TestWriteSummaries(t *testing.T) {
	var buf bytes.Buffer
	rows := []habit.Summary{
		{Name: "Run", Icon: "🏃", CurrentStreak: 4, LongestStreak: 5, CompletionRate: 82, StrengthScore: 39, TotalCompleted: 1200, LastCompleted: "2024-06-14"},
		{Name: "Read", Icon: "📚"},
	}
	if err := writeSummaries(&buf, rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"HABIT", "🏃 Run", "82%", "1,200", "2024-06-14", "📚 Read"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Errorf("got %d lines want 3:\n%s", lines, out)
	}
}

func TestWriteHabitAnalytics_MonthsNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	a := habit.Analytics{
		Habit:            habit.Habit{Name: "Run"},
		MonthlyBreakdown: map[string]int{"2024-04": 3, "2024-06": 10, "2024-05": 7},
		WeeklyTrend:      []habit.WeekTrend{{Week: "2024-06-12", Completed: 3, Rate: 43}},
	}
	if err := writeHabitAnalytics(&buf, a); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	months := out[strings.Index(out, "MONTH"):]
	jun, may, apr := strings.Index(months, "2024-06"), strings.Index(months, "2024-05"), strings.Index(months, "2024-04")
	if jun < 0 || !(jun < may && may < apr) {
		t.Errorf("months not newest first:\n%s", out)
	}
	if !strings.Contains(out, "3/7") {
		t.Errorf("weekly trend missing:\n%s", out)
	}
}

// runCLI executes the root command against a server backed by a temporary
// bolt database and returns what the command printed.
func runCLI(t *testing.T, seed func(st *bolt.Store), args ...string) string {
	t.Helper()
	out, err := executeCLI(t, seed, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func executeCLI(t *testing.T, seed func(st *bolt.Store), args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		timezone, exportOutput = "", "-"
	})

	st, err := bolt.Open(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	if seed != nil {
		seed(st)
	}

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	srv, err := server.New(config.Default(), st, server.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("api_base_url: "+ts.URL+"\nlog_level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HABITS_CONFIG", cfgFile)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err = rootCmd.Execute()
	return out.String(), err
}

// anonymousUser owns every record when auth is disabled.
const anonymousUser = "anonymous"

func seedRun(t *testing.T) func(st *bolt.Store) {
	return func(st *bolt.Store) {
		h := habit.Habit{ID: "run", Name: "Run", CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
		h.ApplyDefaults()
		if err := st.PutHabit(anonymousUser, h); err != nil {
			t.Fatal(err)
		}
		for _, d := range []habit.Day{"2024-06-13", "2024-06-14", "2024-06-15"} {
			l := habit.Log{HabitID: "run", Day: d, Status: habit.StatusCompleted, Intensity: 2}
			if err := st.PutLog(anonymousUser, l); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestStatsAll(t *testing.T) {
	out := runCLI(t, seedRun(t), "stats", "all")
	if !strings.Contains(out, "Run") || !strings.Contains(out, "2024-06-15") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestStatsOverview(t *testing.T) {
	out := runCLI(t, seedRun(t), "stats", "overview")
	for _, want := range []string{"2024-06-15", "1/1", "3 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsHabit(t *testing.T) {
	out := runCLI(t, seedRun(t), "stats", "habit", "run")
	if !strings.Contains(out, "Current streak") || !strings.Contains(out, "2024-06") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTZFlag_AppliesToConfig(t *testing.T) {
	if _, err := time.LoadLocation("Pacific/Auckland"); err != nil {
		t.Skip("tzdata not available:", err)
	}
	out := runCLI(t, seedRun(t), "--tz", "Pacific/Auckland", "stats", "overview")
	if cfg.Timezone != "Pacific/Auckland" {
		t.Errorf("cfg.Timezone = %q", cfg.Timezone)
	}
	// noon UTC on the 15th is already the 16th in Auckland
	if !strings.Contains(out, "2024-06-16") {
		t.Errorf("server did not use the flag's timezone:\n%s", out)
	}
}

func TestTZFlag_Invalid(t *testing.T) {
	if _, err := executeCLI(t, nil, "--tz", "Mars/Base", "stats", "overview"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestExport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	runCLI(t, seedRun(t), "export", "-o", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got server.ExportResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(got.Habits) != 1 || len(got.Logs) != 3 {
		t.Fatalf("got %d habits and %d logs", len(got.Habits), len(got.Logs))
	}
}

func TestExport_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "export.json")
	if _, err := executeCLI(t, seedRun(t), "export", "-o", path); err == nil {
		t.Fatal("expected error writing to a missing directory")
	}
}

func TestAchievementsAndToday(t *testing.T) {
	seed := func(st *bolt.Store) {
		seedRun(t)(st)
		if _, err := st.GrantAchievements(anonymousUser, []habit.Achievement{
			{ID: "streak_3", Name: "3-Day Streak", Icon: "🔥", Streak: 3, HabitID: "run", UnlockedAt: time.Now()},
		}); err != nil {
			t.Fatal(err)
		}
	}
	out := runCLI(t, seed, "achievements")
	if !strings.Contains(out, "3-Day Streak") || !strings.Contains(out, "run") {
		t.Errorf("unexpected achievements output:\n%s", out)
	}

	out = runCLI(t, seedRun(t), "today")
	if !strings.Contains(out, "2024-06-15") || !strings.Contains(out, "completed") {
		t.Errorf("unexpected today output:\n%s", out)
	}
}
