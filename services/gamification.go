package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hackathon-platform/metrics"
	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// How many ledger entries a profile view carries.
const recentEventWindow = 10

// GamificationService owns the XP ledger, level computation, streaks, and
// badge awards. Profile mutations run inside one store transaction so the
// ledger sum and the materialized XP never diverge.
type GamificationService struct {
	store    stores.GamificationStore
	notifier Notifier
	now      func() time.Time
}

func NewGamificationService(store stores.GamificationStore, notifier Notifier) *GamificationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &GamificationService{store: store, notifier: notifier, now: time.Now}
}

type AwardXPInput struct {
	UserID      string
	EventType   string
	Points      int64
	RefType     string
	RefID       string
	HackathonID string
	Metadata    map[string]any
}

// AwardXP appends one ledger entry and applies it to the profile, creating
// the profile on first award. Points must be positive. Idempotence is the
// caller's responsibility; callers needing at-most-once semantics check
// HasAwarded first.
func (s *GamificationService) AwardXP(ctx context.Context, in AwardXPInput) (*models.GamificationProfile, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}
	if in.Points <= 0 {
		return nil, fmt.Errorf("xp points must be positive, got %d: %w", in.Points, ErrValidation)
	}

	var prof *models.GamificationProfile
	var leveledTo int
	err := s.store.InTx(ctx, func(tx stores.GamificationStore) error {
		p, newLevel, err := s.applyAward(ctx, tx, in, s.now().UTC())
		if err != nil {
			return err
		}
		prof = p
		leveledTo = newLevel
		return nil
	})
	if err != nil {
		return nil, err
	}

	if leveledTo > 0 {
		s.notifier.Notify(ctx, Event{
			Type:   EventTypeLevelUp,
			UserID: in.UserID,
			Data:   map[string]any{"level": leveledTo, "xp": prof.XP},
		})
		if err := s.CheckLevelMilestones(ctx, in.UserID, leveledTo); err != nil {
			// Milestone badges ride along with the award; a failure here
			// must not undo the XP that was already committed.
			utils.Sugar.Warnw("level milestone badge failed", "user_id", in.UserID, "level", leveledTo, "error", err)
		}
	}
	return prof, nil
}

// applyAward is the tx-scoped body shared by AwardXP and the streak
// tracker. Returns the updated profile and the new level when the award
// crossed a threshold (0 otherwise).
func (s *GamificationService) applyAward(ctx context.Context, tx stores.GamificationStore, in AwardXPInput, at time.Time) (*models.GamificationProfile, int, error) {
	prof, err := s.profileForUpdate(ctx, tx, in.UserID)
	if err != nil {
		return nil, 0, err
	}

	event := &models.XpEvent{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		EventType:   in.EventType,
		Points:      in.Points,
		RefType:     in.RefType,
		RefID:       in.RefID,
		HackathonID: in.HackathonID,
		CreatedAt:   at,
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal event metadata: %w", err)
		}
		event.Metadata = datatypes.JSON(raw)
	}
	if err := tx.AppendEvent(ctx, event); err != nil {
		return nil, 0, err
	}

	oldLevel := prof.Level
	prof.XP += in.Points
	prof.Level = LevelForXP(prof.XP)
	prof.LastActivityAt = &at

	leveledTo := 0
	if prof.Level > oldLevel {
		prof.LastLevelUpAt = &at
		leveledTo = prof.Level
	}

	if err := tx.SaveProfile(ctx, prof); err != nil {
		return nil, 0, err
	}
	metrics.XPEventsAwarded.Inc()
	return prof, leveledTo, nil
}

// profileForUpdate fetches the profile with a row lock, creating it lazily
// on first touch. The lock serializes concurrent awards for one user so
// the read-increment-write never loses an increment.
func (s *GamificationService) profileForUpdate(ctx context.Context, tx stores.GamificationStore, userID string) (*models.GamificationProfile, error) {
	prof, err := tx.GetProfileForUpdate(ctx, userID)
	if errors.Is(err, stores.ErrNotFound) {
		prof = &models.GamificationProfile{
			ID:     uuid.NewString(),
			UserID: userID,
			XP:     0,
			Level:  1,
		}
		if err := tx.CreateProfile(ctx, prof); err != nil {
			return nil, err
		}
		return prof, nil
	}
	if err != nil {
		return nil, err
	}
	return prof, nil
}

// HasAwarded reports whether the ledger already holds an event for the
// given (user, event type, ref) triple. Collaborators that must award
// at-most-once call this before AwardXP; the check-then-act pair is not
// atomic, which is an accepted tradeoff for these low-contention awards.
func (s *GamificationService) HasAwarded(ctx context.Context, userID, eventType, refID string) (bool, error) {
	return s.store.HasEvent(ctx, userID, eventType, refID)
}

// ProfileView is what getProfile returns to handlers: the row, the derived
// progress breakdown, earned badges, and a recent ledger window.
type ProfileView struct {
	Profile      models.GamificationProfile `json:"profile"`
	Progress     LevelProgress              `json:"progress"`
	Badges       []models.ProfileBadge      `json:"badges"`
	RecentEvents []models.XpEvent           `json:"recent_events"`
}

// GetProfile lazily creates the profile on first read, matching AwardXP's
// lazy creation, then attaches the derived view data.
func (s *GamificationService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}
	var prof *models.GamificationProfile
	err := s.store.InTx(ctx, func(tx stores.GamificationStore) error {
		p, err := s.profileForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		prof = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	events, err := s.store.RecentEvents(ctx, userID, recentEventWindow)
	if err != nil {
		return nil, err
	}
	badges, err := s.store.ProfileBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		Profile:      *prof,
		Progress:     ProgressForXP(prof.XP),
		Badges:       badges,
		RecentEvents: events,
	}, nil
}

// Leaderboard scopes and periods.
const (
	ScopeGlobal    = "global"
	ScopeHackathon = "hackathon"

	PeriodAll   = "all"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

type LeaderboardQuery struct {
	Scope   string
	Period  string
	ScopeID string // hackathon ID when Scope == ScopeHackathon
	Limit   int
}

// RankedEntry's Position is the 1-based index within the returned page,
// not a global rank independent of the limit.
type RankedEntry struct {
	Position   int    `json:"position"`
	UserID     string `json:"user_id"`
	XP         int64  `json:"xp"`
	Level      int    `json:"level"`
	StreakDays int    `json:"streak_days"`
}

func (s *GamificationService) Leaderboard(ctx context.Context, q LeaderboardQuery) ([]RankedEntry, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Scope == "" {
		q.Scope = ScopeGlobal
	}
	if q.Period == "" {
		q.Period = PeriodAll
	}
	if q.Scope == ScopeHackathon && q.ScopeID == "" {
		return nil, fmt.Errorf("scope id is required for hackathon leaderboards: %w", ErrValidation)
	}

	// Fast path: the all-time global board reads straight off profiles.
	if q.Scope == ScopeGlobal && q.Period == PeriodAll {
		profiles, err := s.store.TopProfiles(ctx, q.Limit)
		if err != nil {
			return nil, err
		}
		entries := make([]RankedEntry, len(profiles))
		for i, p := range profiles {
			entries[i] = RankedEntry{
				Position:   i + 1,
				UserID:     p.UserID,
				XP:         p.XP,
				Level:      p.Level,
				StreakDays: p.StreakDays,
			}
		}
		return entries, nil
	}

	var since time.Time
	switch q.Period {
	case PeriodAll:
	case PeriodWeek:
		since = s.now().UTC().AddDate(0, 0, -7)
	case PeriodMonth:
		since = s.now().UTC().AddDate(0, -1, 0)
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q: %w", q.Period, ErrValidation)
	}

	hackathonID := ""
	if q.Scope == ScopeHackathon {
		hackathonID = q.ScopeID
	}
	rows, err := s.store.SumPointsByUser(ctx, hackathonID, since, q.Limit)
	if err != nil {
		return nil, err
	}

	entries := make([]RankedEntry, len(rows))
	for i, row := range rows {
		entry := RankedEntry{Position: i + 1, UserID: row.UserID, XP: row.Points, Level: 1}
		if prof, err := s.store.GetProfile(ctx, row.UserID); err == nil {
			entry.Level = prof.Level
			entry.StreakDays = prof.StreakDays
		}
		entries[i] = entry
	}
	return entries, nil
}
