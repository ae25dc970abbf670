package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hackathon-platform/metrics"
	"hackathon-platform/models"
	"hackathon-platform/stores"
)

// LevelMilestoneBadges maps a level to the badge unlocked on reaching it.
// Levels without an entry unlock nothing.
var LevelMilestoneBadges = map[int]string{
	5:  "level-5",
	10: "level-10",
	25: "level-25",
}

// AwardBadge adds a badge to a profile's set. Awarding an already-held
// badge is a silent no-op. Unlike XP awards the profile must already exist:
// badges reward prior activity, so a missing profile is NotFound. The badge
// slug must exist in the catalog at award time; slugs already held survive
// later catalog deletion.
func (s *GamificationService) AwardBadge(ctx context.Context, userID, badgeSlug string) error {
	var added bool
	err := s.store.InTx(ctx, func(tx stores.GamificationStore) error {
		var err error
		added, err = s.awardBadgeTx(ctx, tx, userID, badgeSlug, s.now().UTC())
		return err
	})
	if err != nil {
		return err
	}
	if added {
		s.notifier.Notify(ctx, Event{
			Type:   EventTypeBadgeUnlocked,
			UserID: userID,
			Data:   map[string]any{"badge": badgeSlug},
		})
	}
	return nil
}

func (s *GamificationService) awardBadgeTx(ctx context.Context, tx stores.GamificationStore, userID, badgeSlug string, at time.Time) (bool, error) {
	if _, err := tx.GetBadge(ctx, badgeSlug); err != nil {
		return false, fmt.Errorf("badge %q: %w", badgeSlug, err)
	}
	if _, err := tx.GetProfile(ctx, userID); err != nil {
		return false, fmt.Errorf("profile for user %q: %w", userID, err)
	}
	held, err := tx.HasProfileBadge(ctx, userID, badgeSlug)
	if err != nil {
		return false, err
	}
	if held {
		return false, nil
	}
	if err := tx.AddProfileBadge(ctx, &models.ProfileBadge{
		ID:        uuid.NewString(),
		UserID:    userID,
		BadgeSlug: badgeSlug,
		AwardedAt: at,
	}); err != nil {
		return false, err
	}
	metrics.BadgesAwarded.Inc()
	return true, nil
}

// CheckLevelMilestones awards the badge mapped to newLevel, if any. Called
// after an award crosses a level threshold; levels skipped by a large
// single award only trigger the landing level's badge.
func (s *GamificationService) CheckLevelMilestones(ctx context.Context, userID string, newLevel int) error {
	slug, ok := LevelMilestoneBadges[newLevel]
	if !ok {
		return nil
	}
	return s.AwardBadge(ctx, userID, slug)
}
