// Package stores defines the persistence ports consumed by the gamification
// and judging engines, with a GORM-backed implementation for production and
// an in-memory implementation for tests.
package stores

import (
	"context"
	"errors"
	"time"

	"hackathon-platform/models"
)

// ErrNotFound is returned by every store lookup that misses. Services and
// handlers match it with errors.Is.
var ErrNotFound = errors.New("record not found")

// UserPoints is one row of a scoped XP sum (leaderboard input).
type UserPoints struct {
	UserID string
	Points int64
}

// GamificationStore persists profiles, the XP ledger, and badges.
//
// InTx runs fn against a transaction-scoped store; the profile row for a
// given user is the contended resource, so every read-modify-write of a
// profile must happen inside one InTx call.
type GamificationStore interface {
	InTx(ctx context.Context, fn func(tx GamificationStore) error) error

	GetProfile(ctx context.Context, userID string) (*models.GamificationProfile, error)
	// GetProfileForUpdate locks the profile row for the rest of the
	// transaction. Read-modify-write of XP must go through this, not
	// GetProfile, or concurrent awards lose increments.
	GetProfileForUpdate(ctx context.Context, userID string) (*models.GamificationProfile, error)
	CreateProfile(ctx context.Context, p *models.GamificationProfile) error
	SaveProfile(ctx context.Context, p *models.GamificationProfile) error
	TopProfiles(ctx context.Context, limit int) ([]models.GamificationProfile, error)

	AppendEvent(ctx context.Context, e *models.XpEvent) error
	RecentEvents(ctx context.Context, userID string, limit int) ([]models.XpEvent, error)
	HasEvent(ctx context.Context, userID, eventType, refID string) (bool, error)
	SumPointsByUser(ctx context.Context, hackathonID string, since time.Time, limit int) ([]UserPoints, error)

	GetBadge(ctx context.Context, slug string) (*models.Badge, error)
	HasProfileBadge(ctx context.Context, userID, slug string) (bool, error)
	AddProfileBadge(ctx context.Context, pb *models.ProfileBadge) error
	ProfileBadges(ctx context.Context, userID string) ([]models.ProfileBadge, error)
}

// JudgingStore persists scores and the submission aggregate fields the
// judging engine owns (ScoreAggregate, Rank). Everything else on a
// submission belongs to the collaborator CRUD layer.
type JudgingStore interface {
	InTx(ctx context.Context, fn func(tx JudgingStore) error) error

	GetCriterion(ctx context.Context, id string) (*models.Criterion, error)
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	IsTeamMember(ctx context.Context, teamID, userID string) (bool, error)
	TeamMemberIDs(ctx context.Context, teamID string) ([]string, error)

	GetScore(ctx context.Context, submissionID, judgeID, criterionID string) (*models.Score, error)
	CreateScore(ctx context.Context, s *models.Score) error
	SaveScore(ctx context.Context, s *models.Score) error
	DeleteScore(ctx context.Context, id string) error
	ScoresBySubmission(ctx context.Context, submissionID string) ([]models.Score, error)

	SetSubmissionAggregate(ctx context.Context, submissionID string, aggregate *float64) error
	ScoredSubmissions(ctx context.Context, hackathonID string) ([]models.Submission, error)
	ClearRanks(ctx context.Context, hackathonID string) error
	SetSubmissionRank(ctx context.Context, submissionID string, rank *int) error
}
