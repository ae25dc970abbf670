package models

// Score is one judge's rating of one submission against one criterion.
// At most one row exists per (submission, judge, criterion); re-scoring is
// an update, never a second insert.
type Score struct {
	ID           string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SubmissionID string  `json:"submission_id" gorm:"not null;uniqueIndex:idx_score_unique;index"`
	JudgeID      string  `json:"judge_id" gorm:"not null;uniqueIndex:idx_score_unique"`
	CriterionID  string  `json:"criterion_id" gorm:"not null;uniqueIndex:idx_score_unique"`
	Value        float64 `json:"value" gorm:"not null"`
	Feedback     string  `json:"feedback" gorm:"type:text"`

	Timestamps
}
