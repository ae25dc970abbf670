package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// TeamJoinXP is awarded once per (user, team).
const TeamJoinXP = 25

type TeamService struct {
	DB           *gorm.DB
	Gamification *GamificationService
}

func NewTeamService(db *gorm.DB, gamification *GamificationService) *TeamService {
	return &TeamService{DB: db, Gamification: gamification}
}

type TeamInput struct {
	HackathonID string `json:"hackathon_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateTeam registers a team with the creator as leader and first member.
func (s *TeamService) CreateTeam(ctx context.Context, leaderID string, in TeamInput) (*models.Team, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("team name is required: %w", ErrValidation)
	}

	hack, err := s.joinableHackathon(ctx, in.HackathonID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotInHackathon(ctx, hack.ID, leaderID); err != nil {
		return nil, err
	}

	team := models.Team{
		ID:          uuid.NewString(),
		HackathonID: hack.ID,
		Name:        utils.SanitizeStrict(in.Name),
		Slug:        slug.Make(in.Name),
		Description: utils.SanitizeUGC(in.Description),
		LeaderID:    leaderID,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		return tx.Create(&models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: team.ID,
			UserID: leaderID,
			Role:   "leader",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.awardJoinXP(ctx, leaderID, &team)
	return &team, nil
}

// JoinTeam adds the user inside one transaction with the team row locked,
// so two concurrent joins cannot both pass the capacity check.
func (s *TeamService) JoinTeam(ctx context.Context, teamID, userID string) (*models.Team, error) {
	var team models.Team
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&team, "id = ?", teamID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("team %s: %w", teamID, stores.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var hack models.Hackathon
		if err := tx.First(&hack, "id = ?", team.HackathonID).Error; err != nil {
			return err
		}
		if hack.Status != models.HackathonPublished && hack.Status != models.HackathonActive {
			return fmt.Errorf("hackathon is not open for team changes: %w", ErrValidation)
		}

		var inHackathon int64
		if err := tx.Model(&models.TeamMember{}).
			Joins("JOIN teams ON teams.id = team_members.team_id").
			Where("teams.hackathon_id = ? AND team_members.user_id = ?", hack.ID, userID).
			Count(&inHackathon).Error; err != nil {
			return err
		}
		if inHackathon > 0 {
			return fmt.Errorf("user already belongs to a team in this hackathon: %w", ErrValidation)
		}

		var members int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&members).Error; err != nil {
			return err
		}
		if members >= int64(hack.MaxTeamSize) {
			return fmt.Errorf("team is full (%d/%d): %w", members, hack.MaxTeamSize, ErrValidation)
		}

		return tx.Create(&models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: teamID,
			UserID: userID,
			Role:   "member",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.awardJoinXP(ctx, userID, &team)
	return &team, nil
}

// awardJoinXP pays the join bonus at most once per team, after the
// membership committed.
func (s *TeamService) awardJoinXP(ctx context.Context, userID string, team *models.Team) {
	awarded, err := s.Gamification.HasAwarded(ctx, userID, models.EventTeamJoined, team.ID)
	if err != nil || awarded {
		return
	}
	if _, err := s.Gamification.AwardXP(ctx, AwardXPInput{
		UserID:      userID,
		EventType:   models.EventTeamJoined,
		Points:      TeamJoinXP,
		RefType:     "team",
		RefID:       team.ID,
		HackathonID: team.HackathonID,
	}); err != nil {
		utils.Sugar.Warnw("team join XP failed", "user_id", userID, "team_id", team.ID, "error", err)
	}
}

// LeaveTeam removes the member. The leader can only leave when alone,
// which disbands the team.
func (s *TeamService) LeaveTeam(ctx context.Context, teamID, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, "id = ?", teamID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("team %s: %w", teamID, stores.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var membership models.TeamMember
		err = tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&membership).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("not a member of this team: %w", stores.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var members int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&members).Error; err != nil {
			return err
		}
		if team.LeaderID == userID && members > 1 {
			return fmt.Errorf("leader cannot leave while the team has members: %w", ErrValidation)
		}

		if err := tx.Delete(&membership).Error; err != nil {
			return err
		}
		if members == 1 {
			return tx.Delete(&team).Error
		}
		return nil
	})
}

func (s *TeamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	err := s.DB.WithContext(ctx).Preload("Members").First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("team %s: %w", id, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	team.MemberCount = int64(len(team.Members))
	return &team, nil
}

func (s *TeamService) ListTeams(ctx context.Context, hackathonID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.WithContext(ctx).
		Preload("Members").
		Where("hackathon_id = ?", hackathonID).
		Order("created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].MemberCount = int64(len(teams[i].Members))
	}
	return teams, nil
}

func (s *TeamService) joinableHackathon(ctx context.Context, id string) (*models.Hackathon, error) {
	var hack models.Hackathon
	err := s.DB.WithContext(ctx).First(&hack, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("hackathon %s: %w", id, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if hack.Status != models.HackathonPublished && hack.Status != models.HackathonActive {
		return nil, fmt.Errorf("hackathon is not open for team changes: %w", ErrValidation)
	}
	return &hack, nil
}

func (s *TeamService) ensureNotInHackathon(ctx context.Context, hackathonID, userID string) error {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("teams.hackathon_id = ? AND team_members.user_id = ?", hackathonID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("user already belongs to a team in this hackathon: %w", ErrValidation)
	}
	return nil
}
