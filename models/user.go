package models

import (
	"gorm.io/datatypes"
)

// User roles. A user holds exactly one role; organizers manage hackathons,
// judges score submissions, admins can do both.
const (
	RoleParticipant = "participant"
	RoleJudge       = "judge"
	RoleOrganizer   = "organizer"
	RoleAdmin       = "admin"
)

type User struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"type:varchar(16);default:'participant'" json:"role"`

	DisplayName string         `json:"display_name"`
	Bio         string         `gorm:"type:text" json:"bio"`
	AvatarURL   string         `gorm:"type:text" json:"avatar_url"`
	Skills      datatypes.JSON `json:"skills,omitempty"` // []string
	College     string         `json:"college"`

	Timestamps
}
