package models

import "time"

// Badge rarity, used only for display ordering on leaderboards.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Badge is a catalog entry. XPRequired is informational; it is not enforced
// at award time.
type Badge struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url" gorm:"type:text"`
	XPRequired  int64     `json:"xp_required" gorm:"default:0"`
	Rarity      string    `json:"rarity" gorm:"type:varchar(16);default:'common'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ProfileBadge is an awarded instance. It stores the badge slug, not a
// foreign key: deleting a catalog badge never strips it from profiles, and
// a dangling slug is tolerated at display time.
type ProfileBadge struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_profile_badge"`
	BadgeSlug string    `json:"badge_slug" gorm:"not null;uniqueIndex:idx_profile_badge"`
	AwardedAt time.Time `json:"awarded_at" gorm:"autoCreateTime"`
}

// DefaultBadges seeds the catalog at boot. Seeding is upsert-on-slug, so
// redeploys never duplicate rows.
var DefaultBadges = []Badge{
	{Slug: "welcome", Name: "Welcome Aboard!", Description: "Joined the platform", Rarity: RarityCommon},
	{Slug: "first-submission", Name: "Shipped It", Description: "Submitted your first project", Rarity: RarityCommon},
	{Slug: "challenge-winner", Name: "Challenge Winner", Description: "Won a hackathon challenge", Rarity: RarityEpic, XPRequired: 500},
	{Slug: "level-5", Name: "Getting Serious", Description: "Reached level 5", Rarity: RarityUncommon, XPRequired: 1000},
	{Slug: "level-10", Name: "Veteran", Description: "Reached level 10", Rarity: RarityRare, XPRequired: 5000},
	{Slug: "level-25", Name: "Legend in Training", Description: "Reached level 25", Rarity: RarityEpic, XPRequired: 50000},
	{Slug: "streak-7", Name: "One Week Wonder", Description: "Active 7 days in a row", Rarity: RarityUncommon},
	{Slug: "streak-30", Name: "Monthly Devotee", Description: "Active 30 days in a row", Rarity: RarityRare},
	{Slug: "streak-100", Name: "Unstoppable", Description: "Active 100 days in a row", Rarity: RarityLegendary},
}
