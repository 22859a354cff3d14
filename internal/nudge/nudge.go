// Package nudge reminds users about streaks that will break unless the habit
// is completed today.
package nudge

import (
	"context"
	"fmt"

	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/pkg/habit"
)

// AtRisk returns the habits with a live streak whose most recent completion
// was before today. Those streaks end at midnight.
func AtRisk(today habit.Day, summaries []habit.Summary) []habit.Summary {
	var out []habit.Summary
	for _, s := range summaries {
		if s.CurrentStreak > 0 && s.LastCompleted != today {
			out = append(out, s)
		}
	}
	return out
}

// Run asks q for the current summaries and sends one nudge listing every
// at-risk habit. It sends nothing when no streak is at risk and reports how
// many habits were included.
func Run(ctx context.Context, q Querier, n Notifier) (int, error) {
	resp, err := q.Summaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch summaries: %w", err)
	}

	atRisk := AtRisk(resp.Today, resp.Analytics)
	if len(atRisk) == 0 {
		logger.Info("No streaks at risk", "today", resp.Today, "habits", len(resp.Analytics))
		return 0, nil
	}

	logger.Info("Sending nudge", "today", resp.Today, "at_risk", len(atRisk))
	if err := n.SendNudge(ctx, resp.Today, atRisk); err != nil {
		return 0, fmt.Errorf("send nudge: %w", err)
	}
	return len(atRisk), nil
}
