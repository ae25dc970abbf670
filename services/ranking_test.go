package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hackathon-platform/models"
	"hackathon-platform/stores"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func rankOf(t *testing.T, store *stores.MemJudgingStore, submissionID string) *int {
	t.Helper()
	sub, err := store.GetSubmission(context.Background(), submissionID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	return sub.Rank
}

func TestCalculateRankings(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	store.SeedSubmission(models.Submission{ID: "sub-a", HackathonID: "hack-1", TeamID: "t1", SubmittedAt: base, ScoreAggregate: floatPtr(95)})
	store.SeedSubmission(models.Submission{ID: "sub-b", HackathonID: "hack-1", TeamID: "t2", SubmittedAt: base, ScoreAggregate: floatPtr(92)})
	store.SeedSubmission(models.Submission{ID: "sub-c", HackathonID: "hack-1", TeamID: "t3", SubmittedAt: base, ScoreAggregate: floatPtr(88)})
	store.SeedSubmission(models.Submission{ID: "sub-d", HackathonID: "hack-1", TeamID: "t4", SubmittedAt: base})

	ranked, err := svc.CalculateRankings(ctx, "hack-1")
	if err != nil {
		t.Fatalf("CalculateRankings: %v", err)
	}
	if ranked != 3 {
		t.Fatalf("ranked = %d, want 3", ranked)
	}
	for _, tc := range []struct {
		id   string
		want int
	}{
		{"sub-a", 1}, {"sub-b", 2}, {"sub-c", 3},
	} {
		r := rankOf(t, store, tc.id)
		if r == nil || *r != tc.want {
			t.Errorf("%s rank = %v, want %d", tc.id, r, tc.want)
		}
	}
	if r := rankOf(t, store, "sub-d"); r != nil {
		t.Errorf("unscored sub-d rank = %d, want nil", *r)
	}
}

func TestCalculateRankingsRerunDeterministic(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	store.SeedSubmission(models.Submission{ID: "sub-a", HackathonID: "hack-1", TeamID: "t1", SubmittedAt: base, ScoreAggregate: floatPtr(70)})
	store.SeedSubmission(models.Submission{ID: "sub-b", HackathonID: "hack-1", TeamID: "t2", SubmittedAt: base, ScoreAggregate: floatPtr(85)})

	if _, err := svc.CalculateRankings(ctx, "hack-1"); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	first := map[string]int{"sub-a": *rankOf(t, store, "sub-a"), "sub-b": *rankOf(t, store, "sub-b")}

	if _, err := svc.CalculateRankings(ctx, "hack-1"); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	for id, want := range first {
		if r := rankOf(t, store, id); r == nil || *r != want {
			t.Errorf("%s rank changed across identical passes: %v, want %d", id, r, want)
		}
	}
}

func TestCalculateRankingsTieBreak(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()
	early := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)

	// Equal aggregates: the earlier submission wins; equal times fall back
	// to ascending ID.
	store.SeedSubmission(models.Submission{ID: "sub-late", HackathonID: "hack-1", TeamID: "t1", SubmittedAt: late, ScoreAggregate: floatPtr(90)})
	store.SeedSubmission(models.Submission{ID: "sub-early", HackathonID: "hack-1", TeamID: "t2", SubmittedAt: early, ScoreAggregate: floatPtr(90)})
	store.SeedSubmission(models.Submission{ID: "sub-z", HackathonID: "hack-1", TeamID: "t3", SubmittedAt: late, ScoreAggregate: floatPtr(90)})

	if _, err := svc.CalculateRankings(ctx, "hack-1"); err != nil {
		t.Fatalf("CalculateRankings: %v", err)
	}
	if r := rankOf(t, store, "sub-early"); r == nil || *r != 1 {
		t.Errorf("sub-early rank = %v, want 1", r)
	}
	if r := rankOf(t, store, "sub-late"); r == nil || *r != 2 {
		t.Errorf("sub-late rank = %v, want 2 (ID beats sub-z)", r)
	}
	if r := rankOf(t, store, "sub-z"); r == nil || *r != 3 {
		t.Errorf("sub-z rank = %v, want 3", r)
	}
}

func TestCalculateRankingsClearsStaleRanks(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()

	// sub-stale was ranked in an earlier pass but its scores are gone.
	store.SeedSubmission(models.Submission{ID: "sub-stale", HackathonID: "hack-1", TeamID: "t1", Rank: intPtr(1)})
	store.SeedSubmission(models.Submission{ID: "sub-live", HackathonID: "hack-1", TeamID: "t2", ScoreAggregate: floatPtr(75)})

	ranked, err := svc.CalculateRankings(ctx, "hack-1")
	if err != nil {
		t.Fatalf("CalculateRankings: %v", err)
	}
	if ranked != 1 {
		t.Fatalf("ranked = %d, want 1", ranked)
	}
	if r := rankOf(t, store, "sub-stale"); r != nil {
		t.Errorf("stale rank = %d, want nil", *r)
	}
	if r := rankOf(t, store, "sub-live"); r == nil || *r != 1 {
		t.Errorf("live rank = %v, want 1", r)
	}
}

func TestCalculateRankingsNotifiesTeamMembers(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	store.SeedSubmission(models.Submission{ID: "sub-a", HackathonID: "hack-1", TeamID: "t1", SubmittedAt: base, ScoreAggregate: floatPtr(95)})
	store.SeedTeamMember("t1", "alice")
	store.SeedTeamMember("t1", "bob")

	if _, err := svc.CalculateRankings(ctx, "hack-1"); err != nil {
		t.Fatalf("CalculateRankings: %v", err)
	}

	events := svc.notifier.(*captureNotifier).ofType(EventTypeRankAssigned)
	if len(events) != 2 {
		t.Fatalf("rank_assigned events = %d, want 2", len(events))
	}
	seen := map[string]bool{}
	for _, e := range events {
		seen[e.UserID] = true
		if r, ok := e.Data["rank"].(int); !ok || r != 1 {
			t.Errorf("event rank = %v, want 1", e.Data["rank"])
		}
	}
	if !seen["alice"] || !seen["bob"] {
		t.Errorf("notified users = %v, want alice and bob", seen)
	}
}

func TestCalculateRankingsRequiresHackathonID(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	_, err := svc.CalculateRankings(context.Background(), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
