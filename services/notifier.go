package services

import "context"

// Event is a domain event emitted by the engines (level up, badge unlock,
// rank assignment). Fan-out to notification rows, Redis pub/sub, or SSE is
// the notifier implementation's concern.
type Event struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

const (
	EventTypeLevelUp       = "level_up"
	EventTypeBadgeUnlocked = "badge_unlocked"
	EventTypeStreakBonus   = "streak_bonus"
	EventTypeScoreRecorded = "score_recorded"
	EventTypeRankAssigned  = "rank_assigned"
)

type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NopNotifier discards events. Engine constructors fall back to it when
// built without a notifier.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, event Event) {}
