package services

import (
	"context"
	"testing"
	"time"

	"hackathon-platform/models"
	"hackathon-platform/stores"
)

func newStreakFixture(t *testing.T) (*GamificationService, *stores.MemGamificationStore, *captureNotifier, *time.Time) {
	t.Helper()
	store := stores.NewMemGamificationStore()
	store.SeedBadges(models.DefaultBadges...)
	notifier := &captureNotifier{}
	svc := NewGamificationService(store, notifier)
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, store, notifier, &clock
}

func TestTouchDailyActivityFirstEver(t *testing.T) {
	svc, _, _, _ := newStreakFixture(t)
	prof, err := svc.TouchDailyActivity(context.Background(), "u1")
	if err != nil {
		t.Fatalf("TouchDailyActivity: %v", err)
	}
	if prof.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", prof.StreakDays)
	}
	if prof.XP != DailyLoginXP {
		t.Errorf("xp = %d, want %d", prof.XP, DailyLoginXP)
	}
}

func TestTouchDailyActivitySameDayNoOp(t *testing.T) {
	svc, _, _, clock := newStreakFixture(t)
	ctx := context.Background()

	if _, err := svc.TouchDailyActivity(ctx, "u1"); err != nil {
		t.Fatalf("first touch: %v", err)
	}
	*clock = clock.Add(6 * time.Hour)
	prof, err := svc.TouchDailyActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("second touch: %v", err)
	}
	if prof.StreakDays != 1 {
		t.Errorf("streak = %d, want 1 (same day)", prof.StreakDays)
	}
	if prof.XP != DailyLoginXP {
		t.Errorf("xp = %d, want %d (no double daily XP)", prof.XP, DailyLoginXP)
	}
}

func TestTouchDailyActivityConsecutiveDays(t *testing.T) {
	svc, _, _, clock := newStreakFixture(t)
	ctx := context.Background()

	for day := 0; day < 3; day++ {
		if _, err := svc.TouchDailyActivity(ctx, "u1"); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		*clock = clock.Add(24 * time.Hour)
	}
	prof, err := svc.TouchDailyActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("final touch: %v", err)
	}
	if prof.StreakDays != 4 {
		t.Errorf("streak = %d, want 4", prof.StreakDays)
	}
	if prof.XP != 4*DailyLoginXP {
		t.Errorf("xp = %d, want %d", prof.XP, 4*DailyLoginXP)
	}
}

func TestTouchDailyActivityCalendarDayBoundary(t *testing.T) {
	svc, _, _, clock := newStreakFixture(t)
	ctx := context.Background()

	// 23:59 one day, 00:01 the next: consecutive despite 2 minutes apart.
	*clock = time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	if _, err := svc.TouchDailyActivity(ctx, "u1"); err != nil {
		t.Fatalf("first touch: %v", err)
	}
	*clock = time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC)
	prof, err := svc.TouchDailyActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("second touch: %v", err)
	}
	if prof.StreakDays != 2 {
		t.Errorf("streak = %d, want 2", prof.StreakDays)
	}
}

func TestTouchDailyActivityBrokenStreakResets(t *testing.T) {
	svc, _, _, clock := newStreakFixture(t)
	ctx := context.Background()

	if _, err := svc.TouchDailyActivity(ctx, "u1"); err != nil {
		t.Fatalf("first touch: %v", err)
	}
	*clock = clock.Add(24 * time.Hour)
	if _, err := svc.TouchDailyActivity(ctx, "u1"); err != nil {
		t.Fatalf("second touch: %v", err)
	}

	// Skip two days; streak restarts at 1, XP is kept.
	*clock = clock.Add(72 * time.Hour)
	prof, err := svc.TouchDailyActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("touch after gap: %v", err)
	}
	if prof.StreakDays != 1 {
		t.Errorf("streak = %d, want 1 after gap", prof.StreakDays)
	}
	if prof.XP != 3*DailyLoginXP {
		t.Errorf("xp = %d, want %d (earned XP survives the reset)", prof.XP, 3*DailyLoginXP)
	}
}

func TestTouchDailyActivityStreakMilestone(t *testing.T) {
	svc, store, notifier, clock := newStreakFixture(t)
	ctx := context.Background()

	// Profile one day short of the 7-day milestone.
	yesterday := clock.Add(-24 * time.Hour)
	if err := store.CreateProfile(ctx, &models.GamificationProfile{
		UserID:         "u1",
		XP:             6 * DailyLoginXP,
		Level:          1,
		StreakDays:     6,
		LastActivityAt: &yesterday,
	}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	prof, err := svc.TouchDailyActivity(ctx, "u1")
	if err != nil {
		t.Fatalf("TouchDailyActivity: %v", err)
	}
	if prof.StreakDays != 7 {
		t.Fatalf("streak = %d, want 7", prof.StreakDays)
	}
	wantXP := int64(7*DailyLoginXP + StreakBonusXP)
	if prof.XP != wantXP {
		t.Errorf("xp = %d, want %d (daily plus streak bonus)", prof.XP, wantXP)
	}
	held, err := store.HasProfileBadge(ctx, "u1", "streak-7")
	if err != nil {
		t.Fatalf("HasProfileBadge: %v", err)
	}
	if !held {
		t.Error("streak-7 badge not awarded")
	}
	if got := notifier.ofType(EventTypeStreakBonus); len(got) != 1 {
		t.Errorf("streak_bonus events = %d, want 1", len(got))
	}
}
