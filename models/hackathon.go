package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Hackathon lifecycle. The scheduler moves published hackathons to active
// once StartTime passes and active ones to judging once EndTime passes;
// organizers close them out manually.
const (
	HackathonDraft     = "draft"
	HackathonPublished = "published"
	HackathonActive    = "active"
	HackathonJudging   = "judging"
	HackathonCompleted = "completed"
)

type Hackathon struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Rules       string         `json:"rules" gorm:"type:text"`
	Location    string         `json:"location"`
	Status      string         `json:"status" gorm:"default:'draft';index"`
	StartTime   time.Time      `json:"start_time" gorm:"not null"`
	EndTime     time.Time      `json:"end_time" gorm:"not null"`
	MaxTeamSize int            `json:"max_team_size" gorm:"default:4"`
	BannerURL   string         `json:"banner_url" gorm:"type:text"`
	Tracks      datatypes.JSON `json:"tracks,omitempty"` // e.g. ["AI","Web3"]
	PrizePool   string         `json:"prize_pool"`
	SponsorName string         `json:"sponsor_name"`
	IsFeatured  bool           `json:"is_featured" gorm:"default:false"`
	PublishedAt *time.Time     `json:"published_at,omitempty" gorm:"index"`
	OrganizerID string         `json:"organizer_id" gorm:"index"`

	Timestamps

	// Relationships
	Challenges []Challenge `json:"challenges,omitempty" gorm:"foreignKey:HackathonID"`
	Criteria   []Criterion `json:"criteria,omitempty" gorm:"foreignKey:HackathonID"`

	// Calculated fields (not stored in DB)
	TeamsCount       int64 `json:"teams_count,omitempty" gorm:"-"`
	SubmissionsCount int64 `json:"submissions_count,omitempty" gorm:"-"`
}

// Challenge is a track-level prize inside a hackathon. Winning one awards
// XP and a badge to every member of the winning team.
type Challenge struct {
	ID                string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	HackathonID       string     `json:"hackathon_id" gorm:"not null;index"`
	Slug              string     `json:"slug" gorm:"index;not null"`
	Title             string     `json:"title" gorm:"not null"`
	Description       string     `json:"description" gorm:"type:text"`
	Prize             string     `json:"prize"`
	WinnerTeamID      *string    `json:"winner_team_id,omitempty"`
	WinnerAnnouncedAt *time.Time `json:"winner_announced_at,omitempty"`

	Timestamps
}

// Criterion is one judging dimension for a hackathon (e.g. "Technical
// Execution", max 100). Scores are bounded by MaxScore.
type Criterion struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	HackathonID string    `json:"hackathon_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	MaxScore    float64   `json:"max_score" gorm:"default:100"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// JudgeAssignment links a judge to a hackathon. A judge may only score
// submissions of hackathons they are assigned to.
type JudgeAssignment struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	HackathonID string    `json:"hackathon_id" gorm:"not null;uniqueIndex:idx_judge_hackathon"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_judge_hackathon"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
