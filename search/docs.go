package search

import (
	"encoding/json"
	"time"

	"hackathon-platform/models"
)

type UserDoc struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Skills      []string  `json:"skills"`
	College     string    `json:"college"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BuildUserDoc(u models.User) ([]byte, error) {
	var skills []string
	_ = json.Unmarshal(u.Skills, &skills)
	return json.Marshal(UserDoc{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Skills:      skills,
		College:     u.College,
		UpdatedAt:   u.UpdatedAt,
	})
}

type HackathonDoc struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	Tracks      []string  `json:"tracks"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BuildHackathonDoc(h models.Hackathon) ([]byte, error) {
	var tracks []string
	_ = json.Unmarshal(h.Tracks, &tracks)
	return json.Marshal(HackathonDoc{
		Name:        h.Name,
		Description: h.Description,
		Location:    h.Location,
		Status:      h.Status,
		Tracks:      tracks,
		StartTime:   h.StartTime,
		EndTime:     h.EndTime,
		UpdatedAt:   h.UpdatedAt,
	})
}

type SubmissionDoc struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HackathonID string    `json:"hackathon_id"`
	TeamID      string    `json:"team_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BuildSubmissionDoc(s models.Submission) ([]byte, error) {
	return json.Marshal(SubmissionDoc{
		Title:       s.Title,
		Description: s.Description,
		HackathonID: s.HackathonID,
		TeamID:      s.TeamID,
		UpdatedAt:   s.UpdatedAt,
	})
}
