package models

import "time"

// Submission is a team's project entry. ScoreAggregate is recomputed on
// every score mutation; Rank is assigned only by a ranking pass and is
// overwritten wholesale on each pass.
type Submission struct {
	ID            string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	HackathonID   string  `json:"hackathon_id" gorm:"not null;index"`
	ChallengeID   *string `json:"challenge_id,omitempty" gorm:"index"`
	TeamID        string  `json:"team_id" gorm:"not null;index"`
	Title         string  `json:"title" gorm:"not null"`
	Description   string  `json:"description" gorm:"type:text"`
	RepoURL       string  `json:"repo_url" gorm:"type:text"`
	DemoURL       string  `json:"demo_url" gorm:"type:text"`
	AttachmentURL string  `json:"attachment_url" gorm:"type:text"`

	SubmittedAt    time.Time `json:"submitted_at"`
	ScoreAggregate *float64  `json:"score_aggregate,omitempty"`
	Rank           *int      `json:"rank,omitempty"`

	Timestamps
}
