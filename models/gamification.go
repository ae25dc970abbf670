package models

import (
	"time"

	"gorm.io/datatypes"
)

// XP event types. Points per type live in services; the ledger only tags
// each entry so callers can query history (e.g. for at-most-once awards).
const (
	EventSignup       = "signup"
	EventDailyLogin   = "daily_login"
	EventStreakBonus  = "streak_bonus"
	EventTeamJoined   = "team_joined"
	EventSubmission   = "project_submitted"
	EventChallengeWon = "challenge_won"
	EventAdminGrant   = "admin_grant"
)

// GamificationProfile tracks gamified progression for each user
// (denormalized for performance). XP is a materialized view of the user's
// XpEvent ledger; Level always equals the level derived from XP.
type GamificationProfile struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	XP         int64 `json:"xp" gorm:"default:0"`
	Level      int   `json:"level" gorm:"default:1"`
	StreakDays int   `json:"streak_days" gorm:"default:0"`

	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	LastLevelUpAt  *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// XpEvent is an append-only ledger entry. Rows are immutable once created;
// the sum of a user's points must equal that user's profile XP.
type XpEvent struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string         `json:"user_id" gorm:"not null;index"`
	EventType   string         `json:"event_type" gorm:"not null;index"`
	Points      int64          `json:"points" gorm:"not null"`
	RefType     string         `json:"ref_type,omitempty"`
	RefID       string         `json:"ref_id,omitempty" gorm:"index"`
	HackathonID string         `json:"hackathon_id,omitempty" gorm:"index"` // set for hackathon-scoped awards; feeds scoped leaderboards
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}
