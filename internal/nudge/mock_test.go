package nudge

import (
	"context"

	"github.com/brk3/habitstats/internal/server"
	"github.com/brk3/habitstats/pkg/habit"
)

type mockClient struct {
	resp *server.AllAnalyticsResponse
	err  error
}

func (f *mockClient) Summaries(ctx context.Context) (*server.AllAnalyticsResponse, error) {
	return f.resp, f.err
}

type mockNotifier struct {
	called bool
	today  habit.Day
	habits []habit.Summary
	err    error
}

func (m *mockNotifier) SendNudge(ctx context.Context, today habit.Day, habits []habit.Summary) error {
	m.called = true
	m.today = today
	m.habits = habits
	return m.err
}
