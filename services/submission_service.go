package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// SubmissionXP goes to each team member on the team's first submission in
// a hackathon.
const SubmissionXP = 100

type SubmissionService struct {
	DB           *gorm.DB
	Gamification *GamificationService
}

func NewSubmissionService(db *gorm.DB, gamification *GamificationService) *SubmissionService {
	return &SubmissionService{DB: db, Gamification: gamification}
}

type SubmissionInput struct {
	HackathonID string  `json:"hackathon_id"`
	ChallengeID *string `json:"challenge_id"`
	TeamID      string  `json:"team_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RepoURL     string  `json:"repo_url"`
	DemoURL     string  `json:"demo_url"`
}

// CreateSubmission accepts a team's entry while the hackathon is active.
// One submission per team per challenge (or per hackathon for the open
// track).
func (s *SubmissionService) CreateSubmission(ctx context.Context, userID string, in SubmissionInput) (*models.Submission, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}

	var hack models.Hackathon
	err := s.DB.WithContext(ctx).First(&hack, "id = ?", in.HackathonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("hackathon %s: %w", in.HackathonID, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if hack.Status != models.HackathonActive {
		return nil, fmt.Errorf("submissions are only accepted while the hackathon is active: %w", ErrValidation)
	}

	var team models.Team
	err = s.DB.WithContext(ctx).First(&team, "id = ?", in.TeamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("team %s: %w", in.TeamID, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if team.HackathonID != hack.ID {
		return nil, fmt.Errorf("team belongs to a different hackathon: %w", ErrValidation)
	}

	var membership int64
	if err := s.DB.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", team.ID, userID).
		Count(&membership).Error; err != nil {
		return nil, err
	}
	if membership == 0 {
		return nil, fmt.Errorf("only team members can submit: %w", ErrValidation)
	}

	dup := s.DB.WithContext(ctx).Model(&models.Submission{}).
		Where("hackathon_id = ? AND team_id = ?", hack.ID, team.ID)
	if in.ChallengeID != nil {
		dup = dup.Where("challenge_id = ?", *in.ChallengeID)
	} else {
		dup = dup.Where("challenge_id IS NULL")
	}
	var existing int64
	if err := dup.Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("team already submitted for this track: %w", ErrDuplicate)
	}

	sub := models.Submission{
		ID:          uuid.NewString(),
		HackathonID: hack.ID,
		ChallengeID: in.ChallengeID,
		TeamID:      team.ID,
		Title:       utils.SanitizeStrict(in.Title),
		Description: utils.SanitizeUGC(in.Description),
		RepoURL:     in.RepoURL,
		DemoURL:     in.DemoURL,
		SubmittedAt: time.Now().UTC(),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return EnqueueOutbox(tx, "submission", sub.ID, "UPSERT", nil)
	})
	if err != nil {
		return nil, err
	}

	s.awardSubmissionXP(ctx, &team, &sub)
	return &sub, nil
}

// awardSubmissionXP pays each member once per hackathon, keyed on the
// hackathon rather than the submission so multi-track teams do not farm
// XP.
func (s *SubmissionService) awardSubmissionXP(ctx context.Context, team *models.Team, sub *models.Submission) {
	var members []models.TeamMember
	if err := s.DB.WithContext(ctx).Where("team_id = ?", team.ID).Find(&members).Error; err != nil {
		utils.Sugar.Warnw("submission XP member lookup failed", "team_id", team.ID, "error", err)
		return
	}
	for _, m := range members {
		awarded, err := s.Gamification.HasAwarded(ctx, m.UserID, models.EventSubmission, sub.HackathonID)
		if err != nil || awarded {
			continue
		}
		if _, err := s.Gamification.AwardXP(ctx, AwardXPInput{
			UserID:      m.UserID,
			EventType:   models.EventSubmission,
			Points:      SubmissionXP,
			RefType:     "hackathon",
			RefID:       sub.HackathonID,
			HackathonID: sub.HackathonID,
			Metadata:    map[string]any{"submission_id": sub.ID},
		}); err != nil {
			utils.Sugar.Warnw("submission XP failed", "user_id", m.UserID, "error", err)
			continue
		}
		if err := s.Gamification.AwardBadge(ctx, m.UserID, "first-submission"); err != nil {
			utils.Sugar.Warnw("first submission badge failed", "user_id", m.UserID, "error", err)
		}
	}
}

// UpdateSubmission lets team members edit while the hackathon stays
// active.
func (s *SubmissionService) UpdateSubmission(ctx context.Context, id, userID string, in SubmissionInput) (*models.Submission, error) {
	sub, err := s.memberSubmission(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	var hack models.Hackathon
	if err := s.DB.WithContext(ctx).First(&hack, "id = ?", sub.HackathonID).Error; err != nil {
		return nil, err
	}
	if hack.Status != models.HackathonActive {
		return nil, fmt.Errorf("submissions are frozen once the hackathon leaves the active phase: %w", ErrValidation)
	}

	if in.Title != "" {
		sub.Title = utils.SanitizeStrict(in.Title)
	}
	if in.Description != "" {
		sub.Description = utils.SanitizeUGC(in.Description)
	}
	if in.RepoURL != "" {
		sub.RepoURL = in.RepoURL
	}
	if in.DemoURL != "" {
		sub.DemoURL = in.DemoURL
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		return EnqueueOutbox(tx, "submission", sub.ID, "UPSERT", nil)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	err := s.DB.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("submission %s: %w", id, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByHackathon returns submissions ranked first, then the unranked by
// submission time.
func (s *SubmissionService) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.DB.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("rank ASC NULLS LAST, submitted_at ASC").
		Find(&subs).Error
	return subs, err
}

// UploadAttachment stores a file on R2 and links it to the submission.
func (s *SubmissionService) UploadAttachment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	sub, err := s.memberSubmission(c.Context(), c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "submission not found"})
		}
		if errors.Is(err, ErrValidation) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only team members can upload"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}

	key := fmt.Sprintf("attachments/%s/%s%s", sub.ID, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	url, err := utils.UploadFileToR2(fileHeader, key)
	if err != nil {
		utils.Sugar.Errorw("attachment upload failed", "submission_id", sub.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}

	sub.AttachmentURL = url
	if err := s.DB.Save(sub).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "save failed"})
	}
	return c.JSON(fiber.Map{"attachment_url": url})
}

func (s *SubmissionService) memberSubmission(ctx context.Context, id, userID string) (*models.Submission, error) {
	sub, err := s.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	var membership int64
	if err := s.DB.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", sub.TeamID, userID).
		Count(&membership).Error; err != nil {
		return nil, err
	}
	if membership == 0 {
		return nil, fmt.Errorf("user is not on the submitting team: %w", ErrValidation)
	}
	return sub, nil
}
