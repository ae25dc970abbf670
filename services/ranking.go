package services

import (
	"context"
	"fmt"
	"sort"

	"hackathon-platform/metrics"
	"hackathon-platform/stores"
)

// CalculateRankings runs a full ranking pass over one hackathon: every
// existing rank is cleared, then dense ranks 1..n are assigned to scored
// submissions ordered by aggregate descending. Ties break on earlier
// SubmittedAt, then ascending submission ID, so re-running the pass over
// unchanged data is a no-op. Unscored submissions keep a null rank.
// Returns the number of submissions ranked.
func (s *JudgingService) CalculateRankings(ctx context.Context, hackathonID string) (int, error) {
	if hackathonID == "" {
		return 0, fmt.Errorf("hackathon id is required: %w", ErrValidation)
	}

	ranked := 0
	var placements []rankPlacement
	err := s.store.InTx(ctx, func(tx stores.JudgingStore) error {
		placements = placements[:0]
		if err := tx.ClearRanks(ctx, hackathonID); err != nil {
			return err
		}
		subs, err := tx.ScoredSubmissions(ctx, hackathonID)
		if err != nil {
			return err
		}

		sort.Slice(subs, func(i, j int) bool {
			a, b := subs[i], subs[j]
			if *a.ScoreAggregate != *b.ScoreAggregate {
				return *a.ScoreAggregate > *b.ScoreAggregate
			}
			if !a.SubmittedAt.Equal(b.SubmittedAt) {
				return a.SubmittedAt.Before(b.SubmittedAt)
			}
			return a.ID < b.ID
		})

		for i := range subs {
			rank := i + 1
			if err := tx.SetSubmissionRank(ctx, subs[i].ID, &rank); err != nil {
				return err
			}
			members, err := tx.TeamMemberIDs(ctx, subs[i].TeamID)
			if err != nil {
				return err
			}
			placements = append(placements, rankPlacement{
				submissionID: subs[i].ID,
				rank:         rank,
				members:      members,
			})
		}
		ranked = len(subs)
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RankingPasses.Inc()
	for _, p := range placements {
		for _, userID := range p.members {
			s.notifier.Notify(ctx, Event{
				Type:   EventTypeRankAssigned,
				UserID: userID,
				Data:   map[string]any{"submission_id": p.submissionID, "rank": p.rank, "hackathon_id": hackathonID},
			})
		}
	}
	return ranked, nil
}

type rankPlacement struct {
	submissionID string
	rank         int
	members      []string
}
