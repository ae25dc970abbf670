package stores

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hackathon-platform/models"
)

type GormJudgingStore struct {
	DB *gorm.DB
}

func NewGormJudgingStore(db *gorm.DB) *GormJudgingStore {
	return &GormJudgingStore{DB: db}
}

func (s *GormJudgingStore) InTx(ctx context.Context, fn func(tx JudgingStore) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormJudgingStore{DB: tx})
	})
}

func (s *GormJudgingStore) GetCriterion(ctx context.Context, id string) (*models.Criterion, error) {
	var crit models.Criterion
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&crit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &crit, nil
}

func (s *GormJudgingStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormJudgingStore) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormJudgingStore) TeamMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ?", teamID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (s *GormJudgingStore) GetScore(ctx context.Context, submissionID, judgeID, criterionID string) (*models.Score, error) {
	var score models.Score
	err := s.DB.WithContext(ctx).
		Where("submission_id = ? AND judge_id = ? AND criterion_id = ?", submissionID, judgeID, criterionID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *GormJudgingStore) CreateScore(ctx context.Context, score *models.Score) error {
	return s.DB.WithContext(ctx).Create(score).Error
}

func (s *GormJudgingStore) SaveScore(ctx context.Context, score *models.Score) error {
	return s.DB.WithContext(ctx).Save(score).Error
}

func (s *GormJudgingStore) DeleteScore(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Unscoped().Delete(&models.Score{}, "id = ?", id).Error
}

func (s *GormJudgingStore) ScoresBySubmission(ctx context.Context, submissionID string) ([]models.Score, error) {
	var scores []models.Score
	err := s.DB.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Find(&scores).Error
	return scores, err
}

func (s *GormJudgingStore) SetSubmissionAggregate(ctx context.Context, submissionID string, aggregate *float64) error {
	return s.DB.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Update("score_aggregate", aggregate).Error
}

func (s *GormJudgingStore) ScoredSubmissions(ctx context.Context, hackathonID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.DB.WithContext(ctx).
		Where("hackathon_id = ? AND score_aggregate IS NOT NULL", hackathonID).
		Find(&subs).Error
	return subs, err
}

func (s *GormJudgingStore) ClearRanks(ctx context.Context, hackathonID string) error {
	return s.DB.WithContext(ctx).Model(&models.Submission{}).
		Where("hackathon_id = ?", hackathonID).
		Update("rank", nil).Error
}

func (s *GormJudgingStore) SetSubmissionRank(ctx context.Context, submissionID string, rank *int) error {
	return s.DB.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Update("rank", rank).Error
}
