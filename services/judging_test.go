package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"hackathon-platform/metrics"
	"hackathon-platform/models"
	"hackathon-platform/stores"
)

func newJudgingFixture(t *testing.T) (*JudgingService, *stores.MemJudgingStore) {
	t.Helper()
	store := stores.NewMemJudgingStore()
	svc := NewJudgingService(store, &captureNotifier{})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}

	store.SeedCriterion(models.Criterion{ID: "crit-1", HackathonID: "hack-1", Name: "Innovation", MaxScore: 100})
	store.SeedCriterion(models.Criterion{ID: "crit-2", HackathonID: "hack-1", Name: "Execution", MaxScore: 100})
	store.SeedCriterion(models.Criterion{ID: "crit-other", HackathonID: "hack-2", Name: "Design", MaxScore: 100})
	store.SeedSubmission(models.Submission{ID: "sub-1", HackathonID: "hack-1", TeamID: "team-1", Title: "Project One"})
	store.SeedTeamMember("team-1", "member-1")
	return svc, store
}

func aggregateOf(t *testing.T, store *stores.MemJudgingStore, submissionID string) *float64 {
	t.Helper()
	sub, err := store.GetSubmission(context.Background(), submissionID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	return sub.ScoreAggregate
}

func TestRecordScoreAndAggregate(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()

	score, err := svc.RecordScore(ctx, ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 80, Feedback: "solid",
	})
	if err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if score.ID == "" {
		t.Error("score ID not assigned")
	}
	agg := aggregateOf(t, store, "sub-1")
	if agg == nil || *agg != 80 {
		t.Fatalf("aggregate = %v, want 80", agg)
	}
}

func TestScoreTimestampsUseServiceClock(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	ctx := context.Background()
	want := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	score, err := svc.RecordScore(ctx, ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 80,
	})
	if err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if !score.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", score.CreatedAt, want)
	}

	updated, err := svc.UpdateScore(ctx, ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 90,
	})
	if err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if !updated.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, want)
	}
}

func TestScoreMetricCountsCreatesAndUpdates(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.ScoresRecorded)

	if _, err := svc.RecordScore(ctx, ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 80,
	}); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if _, err := svc.UpdateScore(ctx, ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 85,
	}); err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}

	if got := testutil.ToFloat64(metrics.ScoresRecorded) - before; got != 2 {
		t.Errorf("scores_recorded delta = %v, want 2", got)
	}
}

func TestRecordScoreDuplicateRejected(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	ctx := context.Background()

	in := ScoreInput{SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 80}
	if _, err := svc.RecordScore(ctx, in); err != nil {
		t.Fatalf("first RecordScore: %v", err)
	}
	in.Value = 90
	_, err := svc.RecordScore(ctx, in)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate err = %v, want ErrValidation", err)
	}
}

func TestRecordScoreBounds(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	ctx := context.Background()

	for _, value := range []float64{-1, 100.5} {
		_, err := svc.RecordScore(ctx, ScoreInput{
			SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: value,
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("value=%v: err = %v, want ErrValidation", value, err)
		}
	}
}

func TestRecordScoreConflictOfInterest(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	_, err := svc.RecordScore(context.Background(), ScoreInput{
		SubmissionID: "sub-1", JudgeID: "member-1", CriterionID: "crit-1", Value: 100,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for judge on submitting team", err)
	}
}

func TestRecordScoreUnknownSubmission(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	_, err := svc.RecordScore(context.Background(), ScoreInput{
		SubmissionID: "nope", JudgeID: "judge-1", CriterionID: "crit-1", Value: 50,
	})
	if !errors.Is(err, stores.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordScoreCriterionFromOtherHackathon(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	_, err := svc.RecordScore(context.Background(), ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-other", Value: 50,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAggregateIsMeanOfJudgeTotals(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()

	// Three judges, one criterion each: (80 + 88 + 95) / 3.
	for i, value := range []float64{80, 88, 95} {
		judge := []string{"judge-1", "judge-2", "judge-3"}[i]
		if _, err := svc.RecordScore(ctx, ScoreInput{
			SubmissionID: "sub-1", JudgeID: judge, CriterionID: "crit-1", Value: value,
		}); err != nil {
			t.Fatalf("RecordScore(%s): %v", judge, err)
		}
	}
	agg := aggregateOf(t, store, "sub-1")
	want := (80.0 + 88.0 + 95.0) / 3.0
	if agg == nil || math.Abs(*agg-want) > 1e-9 {
		t.Fatalf("aggregate = %v, want %v", agg, want)
	}
}

func TestAggregateCountsPartialJudgeAsOneVoice(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()

	// judge-1 scores both criteria, judge-2 only one. Judge totals are 150
	// and 60; the aggregate averages the two totals, not the three rows.
	scores := []ScoreInput{
		{SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 70},
		{SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-2", Value: 80},
		{SubmissionID: "sub-1", JudgeID: "judge-2", CriterionID: "crit-1", Value: 60},
	}
	for _, in := range scores {
		if _, err := svc.RecordScore(ctx, in); err != nil {
			t.Fatalf("RecordScore: %v", err)
		}
	}
	agg := aggregateOf(t, store, "sub-1")
	want := (150.0 + 60.0) / 2.0
	if agg == nil || math.Abs(*agg-want) > 1e-9 {
		t.Fatalf("aggregate = %v, want %v", agg, want)
	}
}

func TestUpdateScoreRecomputesAggregate(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()

	in := ScoreInput{SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 80}
	if _, err := svc.RecordScore(ctx, in); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	in.Value = 95
	in.Feedback = "revised upward"
	updated, err := svc.UpdateScore(ctx, in)
	if err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if updated.Value != 95 || updated.Feedback != "revised upward" {
		t.Errorf("updated score = %v/%q", updated.Value, updated.Feedback)
	}
	agg := aggregateOf(t, store, "sub-1")
	if agg == nil || *agg != 95 {
		t.Fatalf("aggregate = %v, want 95", agg)
	}
}

func TestUpdateScoreMissing(t *testing.T) {
	svc, _ := newJudgingFixture(t)
	_, err := svc.UpdateScore(context.Background(), ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 50,
	})
	if !errors.Is(err, stores.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteLastScoreResetsAggregate(t *testing.T) {
	svc, store := newJudgingFixture(t)
	ctx := context.Background()

	if _, err := svc.RecordScore(ctx, ScoreInput{
		SubmissionID: "sub-1", JudgeID: "judge-1", CriterionID: "crit-1", Value: 80,
	}); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if err := svc.DeleteScore(ctx, "sub-1", "judge-1", "crit-1"); err != nil {
		t.Fatalf("DeleteScore: %v", err)
	}
	if agg := aggregateOf(t, store, "sub-1"); agg != nil {
		t.Fatalf("aggregate = %v, want nil after last score removed", *agg)
	}
}
