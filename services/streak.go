package services

import (
	"context"
	"fmt"
	"time"

	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// Daily-activity XP amounts. The streak bonus lands every time a milestone
// length is reached; the matching badge only unlocks once.
const (
	DailyLoginXP  = 10
	StreakBonusXP = 50
)

// StreakMilestoneBadges maps streak length to the badge it unlocks.
var StreakMilestoneBadges = map[int]string{
	7:   "streak-7",
	30:  "streak-30",
	100: "streak-100",
}

// TouchDailyActivity records one qualifying activity (typically login) for
// the day. Day boundaries are UTC calendar dates, not 24h windows: activity
// at 23:59 and 00:01 counts as consecutive days.
func (s *GamificationService) TouchDailyActivity(ctx context.Context, userID string) (*models.GamificationProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}
	now := s.now().UTC()

	var prof *models.GamificationProfile
	var leveledTo int
	var milestoneSlug string
	err := s.store.InTx(ctx, func(tx stores.GamificationStore) error {
		p, err := s.profileForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		newStreak := 1
		if p.LastActivityAt != nil {
			switch days := calendarDaysBetween(*p.LastActivityAt, now); {
			case days <= 0:
				// Already counted today: no XP, no streak change.
				prof = p
				return nil
			case days == 1:
				newStreak = p.StreakDays + 1
			default:
				// Streak broken; restart at 1. No penalty beyond the reset.
				newStreak = 1
			}
		}

		updated, newLevel, err := s.applyAward(ctx, tx, AwardXPInput{
			UserID:    userID,
			EventType: models.EventDailyLogin,
			Points:    DailyLoginXP,
		}, now)
		if err != nil {
			return err
		}
		leveledTo = newLevel

		if slug, ok := StreakMilestoneBadges[newStreak]; ok {
			milestoneSlug = slug
			updated, newLevel, err = s.applyAward(ctx, tx, AwardXPInput{
				UserID:    userID,
				EventType: models.EventStreakBonus,
				Points:    StreakBonusXP,
				RefType:   "streak",
				RefID:     slug,
			}, now)
			if err != nil {
				return err
			}
			if newLevel > 0 {
				leveledTo = newLevel
			}
			if _, err := s.awardBadgeTx(ctx, tx, userID, slug, now); err != nil {
				return err
			}
		}

		updated.StreakDays = newStreak
		if err := tx.SaveProfile(ctx, updated); err != nil {
			return err
		}
		prof = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if milestoneSlug != "" {
		s.notifier.Notify(ctx, Event{
			Type:   EventTypeStreakBonus,
			UserID: userID,
			Data:   map[string]any{"streak_days": prof.StreakDays, "badge": milestoneSlug},
		})
	}
	if leveledTo > 0 {
		s.notifier.Notify(ctx, Event{
			Type:   EventTypeLevelUp,
			UserID: userID,
			Data:   map[string]any{"level": leveledTo, "xp": prof.XP},
		})
		if err := s.CheckLevelMilestones(ctx, userID, leveledTo); err != nil {
			utils.Sugar.Warnw("level milestone badge failed", "user_id", userID, "level", leveledTo, "error", err)
		}
	}
	return prof, nil
}

// calendarDaysBetween counts whole UTC calendar days from one instant's
// date to another's. Same date yields 0 regardless of elapsed hours.
func calendarDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
