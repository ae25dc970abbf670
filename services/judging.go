package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hackathon-platform/metrics"
	"hackathon-platform/models"
	"hackathon-platform/stores"
)

// JudgingService owns score entry and the per-submission aggregate. Every
// score mutation recomputes the submission's aggregate inside the same
// transaction so the stored value never lags the score rows.
type JudgingService struct {
	store    stores.JudgingStore
	notifier Notifier
	now      func() time.Time
}

func NewJudgingService(store stores.JudgingStore, notifier Notifier) *JudgingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &JudgingService{store: store, notifier: notifier, now: time.Now}
}

type ScoreInput struct {
	SubmissionID string
	JudgeID      string
	CriterionID  string
	Value        float64
	Feedback     string
}

func (in ScoreInput) validate() error {
	if in.SubmissionID == "" || in.JudgeID == "" || in.CriterionID == "" {
		return fmt.Errorf("submission, judge and criterion ids are required: %w", ErrValidation)
	}
	return nil
}

// RecordScore inserts one judge's rating of a submission against a
// criterion. Rejected when the judge sits on the submitting team or when a
// score for the same (submission, judge, criterion) triple already exists;
// re-scoring goes through UpdateScore.
func (s *JudgingService) RecordScore(ctx context.Context, in ScoreInput) (*models.Score, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var score *models.Score
	err := s.store.InTx(ctx, func(tx stores.JudgingStore) error {
		sub, crit, err := s.scoreTargets(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := checkScoreBounds(in.Value, crit); err != nil {
			return err
		}

		member, err := tx.IsTeamMember(ctx, sub.TeamID, in.JudgeID)
		if err != nil {
			return err
		}
		if member {
			return fmt.Errorf("judge %s is on the submitting team: %w", in.JudgeID, ErrValidation)
		}

		if _, err := tx.GetScore(ctx, in.SubmissionID, in.JudgeID, in.CriterionID); err == nil {
			return fmt.Errorf("score already exists for this criterion: %w", ErrDuplicate)
		} else if !isNotFound(err) {
			return err
		}

		score = &models.Score{
			ID:           uuid.NewString(),
			SubmissionID: in.SubmissionID,
			JudgeID:      in.JudgeID,
			CriterionID:  in.CriterionID,
			Value:        in.Value,
			Feedback:     in.Feedback,
		}
		score.CreatedAt = s.now().UTC()
		if err := tx.CreateScore(ctx, score); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, tx, in.SubmissionID)
	})
	if err != nil {
		return nil, err
	}

	metrics.ScoresRecorded.Inc()
	s.notifier.Notify(ctx, Event{
		Type:   EventTypeScoreRecorded,
		UserID: in.JudgeID,
		Data:   map[string]any{"submission_id": in.SubmissionID, "criterion_id": in.CriterionID},
	})
	return score, nil
}

// UpdateScore replaces the value and feedback of an existing score.
func (s *JudgingService) UpdateScore(ctx context.Context, in ScoreInput) (*models.Score, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var score *models.Score
	err := s.store.InTx(ctx, func(tx stores.JudgingStore) error {
		_, crit, err := s.scoreTargets(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := checkScoreBounds(in.Value, crit); err != nil {
			return err
		}

		existing, err := tx.GetScore(ctx, in.SubmissionID, in.JudgeID, in.CriterionID)
		if err != nil {
			return fmt.Errorf("score: %w", err)
		}
		existing.Value = in.Value
		existing.Feedback = in.Feedback
		existing.UpdatedAt = s.now().UTC()
		if err := tx.SaveScore(ctx, existing); err != nil {
			return err
		}
		score = existing
		return s.recomputeAggregate(ctx, tx, in.SubmissionID)
	})
	if err != nil {
		return nil, err
	}

	metrics.ScoresRecorded.Inc()
	return score, nil
}

// DeleteScore removes a judge's score for one criterion and recomputes the
// aggregate; deleting the last score resets the aggregate to null.
func (s *JudgingService) DeleteScore(ctx context.Context, submissionID, judgeID, criterionID string) error {
	return s.store.InTx(ctx, func(tx stores.JudgingStore) error {
		existing, err := tx.GetScore(ctx, submissionID, judgeID, criterionID)
		if err != nil {
			return fmt.Errorf("score: %w", err)
		}
		if err := tx.DeleteScore(ctx, existing.ID); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, tx, submissionID)
	})
}

// SubmissionScores returns all scores for a submission, for judging UIs.
func (s *JudgingService) SubmissionScores(ctx context.Context, submissionID string) ([]models.Score, error) {
	if _, err := s.store.GetSubmission(ctx, submissionID); err != nil {
		return nil, fmt.Errorf("submission %s: %w", submissionID, err)
	}
	return s.store.ScoresBySubmission(ctx, submissionID)
}

// scoreTargets loads the submission and criterion a score refers to and
// checks they belong to the same hackathon.
func (s *JudgingService) scoreTargets(ctx context.Context, tx stores.JudgingStore, in ScoreInput) (*models.Submission, *models.Criterion, error) {
	sub, err := tx.GetSubmission(ctx, in.SubmissionID)
	if err != nil {
		return nil, nil, fmt.Errorf("submission %s: %w", in.SubmissionID, err)
	}
	crit, err := tx.GetCriterion(ctx, in.CriterionID)
	if err != nil {
		return nil, nil, fmt.Errorf("criterion %s: %w", in.CriterionID, err)
	}
	if crit.HackathonID != sub.HackathonID {
		return nil, nil, fmt.Errorf("criterion belongs to a different hackathon: %w", ErrValidation)
	}
	return sub, crit, nil
}

func checkScoreBounds(value float64, crit *models.Criterion) error {
	if value < 0 || value > crit.MaxScore {
		return fmt.Errorf("score %.2f outside [0, %.0f] for criterion %s: %w",
			value, crit.MaxScore, crit.Name, ErrValidation)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, stores.ErrNotFound)
}

// recomputeAggregate stores the judge-weighted mean: each judge's scores
// sum to that judge's total, and the aggregate is the mean of judge totals.
// A judge who scored only some criteria still counts as one full voice
// rather than dragging partial sums into a flat per-row average.
func (s *JudgingService) recomputeAggregate(ctx context.Context, tx stores.JudgingStore, submissionID string) error {
	scores, err := tx.ScoresBySubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		return tx.SetSubmissionAggregate(ctx, submissionID, nil)
	}

	totals := make(map[string]float64)
	for _, sc := range scores {
		totals[sc.JudgeID] += sc.Value
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	agg := sum / float64(len(totals))
	return tx.SetSubmissionAggregate(ctx, submissionID, &agg)
}
