package services

import (
	"context"
	"errors"
	"testing"

	"hackathon-platform/models"
	"hackathon-platform/stores"
)

func TestAwardBadgeUnknownSlug(t *testing.T) {
	svc, _, _ := newGamificationFixture(t)
	ctx := context.Background()
	if _, err := svc.AwardXP(ctx, AwardXPInput{UserID: "u1", EventType: models.EventSignup, Points: 10}); err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	err := svc.AwardBadge(ctx, "u1", "no-such-badge")
	if !errors.Is(err, stores.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAwardBadgeMissingProfile(t *testing.T) {
	svc, _, _ := newGamificationFixture(t)
	err := svc.AwardBadge(context.Background(), "ghost", "welcome")
	if !errors.Is(err, stores.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAwardBadgeIdempotent(t *testing.T) {
	svc, store, notifier := newGamificationFixture(t)
	ctx := context.Background()
	if _, err := svc.AwardXP(ctx, AwardXPInput{UserID: "u1", EventType: models.EventSignup, Points: 10}); err != nil {
		t.Fatalf("AwardXP: %v", err)
	}

	if err := svc.AwardBadge(ctx, "u1", "welcome"); err != nil {
		t.Fatalf("first award: %v", err)
	}
	if err := svc.AwardBadge(ctx, "u1", "welcome"); err != nil {
		t.Fatalf("second award should be silent no-op, got %v", err)
	}

	badges, err := store.ProfileBadges(ctx, "u1")
	if err != nil {
		t.Fatalf("ProfileBadges: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("badges = %d, want 1", len(badges))
	}
	if got := notifier.ofType(EventTypeBadgeUnlocked); len(got) != 1 {
		t.Errorf("badge_unlocked events = %d, want 1 (no event on the no-op)", len(got))
	}
}

func TestCheckLevelMilestonesUnmappedLevel(t *testing.T) {
	svc, store, _ := newGamificationFixture(t)
	ctx := context.Background()
	if _, err := svc.AwardXP(ctx, AwardXPInput{UserID: "u1", EventType: models.EventSignup, Points: 10}); err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	if err := svc.CheckLevelMilestones(ctx, "u1", 3); err != nil {
		t.Fatalf("CheckLevelMilestones: %v", err)
	}
	badges, err := store.ProfileBadges(ctx, "u1")
	if err != nil {
		t.Fatalf("ProfileBadges: %v", err)
	}
	if len(badges) != 0 {
		t.Errorf("badges = %d, want 0 for unmapped level", len(badges))
	}
}
