package models

import "time"

type Team struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	HackathonID string `json:"hackathon_id" gorm:"not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"index;not null"`
	Description string `json:"description" gorm:"type:text"`
	LeaderID    string `json:"leader_id" gorm:"not null"`

	Timestamps

	Members []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`

	// Calculated (not stored)
	MemberCount int64 `json:"member_count,omitempty" gorm:"-"`
}

// TeamMember rows are unique per (team, user); the unique index is the
// backstop for two concurrent joins of the same user.
type TeamMember struct {
	ID       string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TeamID   string    `json:"team_id" gorm:"not null;uniqueIndex:idx_team_member"`
	UserID   string    `json:"user_id" gorm:"not null;uniqueIndex:idx_team_member;index"`
	Role     string    `json:"role" gorm:"type:varchar(16);default:'member'"` // leader, member
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}
