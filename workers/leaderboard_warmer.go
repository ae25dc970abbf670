package workers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"hackathon-platform/services"
	"hackathon-platform/utils"
)

// LeaderboardCacheKey holds the warm global all-time board. Handlers serve
// it directly when present and fall back to the database when not.
const LeaderboardCacheKey = "leaderboard:global:all"

// LeaderboardWarmer refreshes the cached global leaderboard so the
// hottest read path skips Postgres.
type LeaderboardWarmer struct {
	Gamification *services.GamificationService
	Redis        *redis.Client
	Interval     time.Duration
}

func (w *LeaderboardWarmer) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *LeaderboardWarmer) refresh(ctx context.Context) {
	entries, err := w.Gamification.Leaderboard(ctx, services.LeaderboardQuery{
		Scope:  services.ScopeGlobal,
		Period: services.PeriodAll,
		Limit:  100,
	})
	if err != nil {
		utils.Sugar.Warnw("leaderboard warm failed", "error", err)
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := w.Redis.Set(ctx, LeaderboardCacheKey, payload, 5*time.Minute).Err(); err != nil {
		utils.Sugar.Debugw("leaderboard cache set failed", "error", err)
	}
}
