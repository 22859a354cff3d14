package nudge

import (
	"context"

	"github.com/brk3/habitstats/internal/server"
	"github.com/brk3/habitstats/pkg/habit"
)

type Querier interface {
	Summaries(ctx context.Context) (*server.AllAnalyticsResponse, error)
}

type Notifier interface {
	SendNudge(ctx context.Context, today habit.Day, habits []habit.Summary) error
}
