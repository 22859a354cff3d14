package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/brk3/habitstats/internal/server"
	"github.com/brk3/habitstats/pkg/habit"
	"github.com/brk3/habitstats/pkg/versioninfo"
)

type Client struct {
	BaseURL string
	APIKey  string
	// Timezone is sent as X-Timezone so the server computes "today" in the
	// caller's calendar. Empty means the server default.
	Timezone string
	HTTP     *http.Client
}

func New(base, apiKey string) *Client {
	return &Client{
		BaseURL: base,
		APIKey:  apiKey,
		HTTP:    http.DefaultClient,
	}
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.Timezone != "" {
		req.Header.Set("X-Timezone", c.Timezone)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(res.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s: %s", method, path, res.Status, e.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) Version(ctx context.Context) (*versioninfo.VersionInfo, error) {
	var out versioninfo.VersionInfo
	if err := c.do(ctx, http.MethodGet, "/version", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListHabits(ctx context.Context, includeArchived bool) ([]habit.Habit, error) {
	path := "/habits/"
	if includeArchived {
		path += "?archived=true"
	}
	var response server.HabitListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Habits, nil
}

func (c *Client) CreateHabit(ctx context.Context, h habit.Habit) (*habit.Habit, error) {
	var out habit.Habit
	if err := c.do(ctx, http.MethodPost, "/habits/", h, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateHabit sends only the given fields; the rest of the habit is kept.
func (c *Client) UpdateHabit(ctx context.Context, habitID string, fields map[string]any) (*habit.Habit, error) {
	var out habit.Habit
	if err := c.do(ctx, http.MethodPut, "/habits/"+url.PathEscape(habitID), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHabit(ctx context.Context, habitID string) error {
	return c.do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(habitID), nil, nil)
}

// PutLog upserts the log for l.Day; an empty day means today on the server
// side, in the client's timezone.
func (c *Client) PutLog(ctx context.Context, habitID string, l habit.Log) (*server.PutLogResponse, error) {
	var out server.PutLogResponse
	if err := c.do(ctx, http.MethodPut, "/habits/"+url.PathEscape(habitID)+"/logs", l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TodayLogs returns today's logs across all habits, today being decided in
// the client's timezone.
func (c *Client) TodayLogs(ctx context.Context) (*server.TodayLogsResponse, error) {
	var out server.TodayLogsResponse
	if err := c.do(ctx, http.MethodGet, "/logs/today", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Achievements(ctx context.Context) ([]habit.Achievement, error) {
	var out server.AchievementListResponse
	if err := c.do(ctx, http.MethodGet, "/achievements", nil, &out); err != nil {
		return nil, err
	}
	return out.Achievements, nil
}

func (c *Client) Overview(ctx context.Context) (*server.OverviewResponse, error) {
	var out server.OverviewResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summaries(ctx context.Context) (*server.AllAnalyticsResponse, error) {
	var out server.AllAnalyticsResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/habits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HabitAnalytics(ctx context.Context, habitID string) (*server.HabitAnalyticsResponse, error) {
	var out server.HabitAnalyticsResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/habits/"+url.PathEscape(habitID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Export(ctx context.Context) (*server.ExportResponse, error) {
	var out server.ExportResponse
	if err := c.do(ctx, http.MethodGet, "/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
