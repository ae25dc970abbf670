package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// ChallengeWinXP goes to every member of a winning team, once per
// challenge.
const ChallengeWinXP = 500

type HackathonService struct {
	DB           *gorm.DB
	Gamification *GamificationService
}

func NewHackathonService(db *gorm.DB, gamification *GamificationService) *HackathonService {
	return &HackathonService{DB: db, Gamification: gamification}
}

type HackathonInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Rules       string    `json:"rules"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxTeamSize int       `json:"max_team_size"`
	Tracks      []string  `json:"tracks"`
	PrizePool   string    `json:"prize_pool"`
	SponsorName string    `json:"sponsor_name"`
}

func (s *HackathonService) CreateHackathon(ctx context.Context, organizerID string, in HackathonInput) (*models.Hackathon, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("end time must be after start time: %w", ErrValidation)
	}
	if in.MaxTeamSize <= 0 {
		in.MaxTeamSize = 4
	}

	h := models.Hackathon{
		ID:          uuid.NewString(),
		Slug:        s.uniqueSlug(ctx, in.Name),
		Name:        utils.SanitizeStrict(in.Name),
		Description: utils.SanitizeUGC(in.Description),
		Rules:       utils.SanitizeUGC(in.Rules),
		Location:    utils.SanitizeStrict(in.Location),
		Status:      models.HackathonDraft,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		MaxTeamSize: in.MaxTeamSize,
		PrizePool:   in.PrizePool,
		SponsorName: in.SponsorName,
		OrganizerID: organizerID,
	}
	if len(in.Tracks) > 0 {
		raw, err := marshalJSON(in.Tracks)
		if err != nil {
			return nil, err
		}
		h.Tracks = raw
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&h).Error; err != nil {
			return err
		}
		return EnqueueOutbox(tx, "hackathon", h.ID, "UPSERT", nil)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// uniqueSlug derives a URL slug from the name, suffixing on collision.
func (s *HackathonService) uniqueSlug(ctx context.Context, name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Hackathon{}).
			Where("slug = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetHackathon resolves by ID or slug and attaches counts and relations.
func (s *HackathonService) GetHackathon(ctx context.Context, idOrSlug string) (*models.Hackathon, error) {
	var h models.Hackathon
	err := s.DB.WithContext(ctx).
		Preload("Challenges").
		Preload("Criteria", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ? OR slug = ?", idOrSlug, idOrSlug).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("hackathon %s: %w", idOrSlug, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.DB.WithContext(ctx).Model(&models.Team{}).Where("hackathon_id = ?", h.ID).Count(&h.TeamsCount)
	s.DB.WithContext(ctx).Model(&models.Submission{}).Where("hackathon_id = ?", h.ID).Count(&h.SubmissionsCount)
	return &h, nil
}

type HackathonFilter struct {
	Status   string
	Featured bool
	Page     int
	Size     int
}

func (s *HackathonService) ListHackathons(ctx context.Context, f HackathonFilter) ([]models.Hackathon, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 || f.Size > 100 {
		f.Size = 20
	}

	db := s.DB.WithContext(ctx).Model(&models.Hackathon{})
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	} else {
		db = db.Where("status <> ?", models.HackathonDraft)
	}
	if f.Featured {
		db = db.Where("is_featured = true")
	}

	var hackathons []models.Hackathon
	err := db.Order("start_time DESC").
		Offset((f.Page - 1) * f.Size).
		Limit(f.Size).
		Find(&hackathons).Error
	return hackathons, err
}

func (s *HackathonService) UpdateHackathon(ctx context.Context, id, organizerID string, in HackathonInput) (*models.Hackathon, error) {
	h, err := s.ownedHackathon(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		h.Name = utils.SanitizeStrict(in.Name)
	}
	if in.Description != "" {
		h.Description = utils.SanitizeUGC(in.Description)
	}
	if in.Rules != "" {
		h.Rules = utils.SanitizeUGC(in.Rules)
	}
	if in.Location != "" {
		h.Location = utils.SanitizeStrict(in.Location)
	}
	if !in.StartTime.IsZero() {
		h.StartTime = in.StartTime
	}
	if !in.EndTime.IsZero() {
		h.EndTime = in.EndTime
	}
	if in.MaxTeamSize > 0 {
		h.MaxTeamSize = in.MaxTeamSize
	}
	if !h.EndTime.After(h.StartTime) {
		return nil, fmt.Errorf("end time must be after start time: %w", ErrValidation)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(h).Error; err != nil {
			return err
		}
		return EnqueueOutbox(tx, "hackathon", h.ID, "UPSERT", nil)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Publish moves a draft into the public listing. The scheduler takes it
// from there.
func (s *HackathonService) Publish(ctx context.Context, id, organizerID string) (*models.Hackathon, error) {
	h, err := s.ownedHackathon(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}
	if h.Status != models.HackathonDraft {
		return nil, fmt.Errorf("only draft hackathons can be published, status is %s: %w", h.Status, ErrValidation)
	}
	now := time.Now().UTC()
	h.Status = models.HackathonPublished
	h.PublishedAt = &now
	if err := s.DB.WithContext(ctx).Save(h).Error; err != nil {
		return nil, err
	}
	utils.Sugar.Infow("hackathon published", "hackathon_id", h.ID, "slug", h.Slug)
	return h, nil
}

// Complete closes out judging. Organizers call this after the ranking pass
// and winner announcements.
func (s *HackathonService) Complete(ctx context.Context, id, organizerID string) (*models.Hackathon, error) {
	h, err := s.ownedHackathon(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}
	if h.Status != models.HackathonJudging {
		return nil, fmt.Errorf("only judging hackathons can be completed, status is %s: %w", h.Status, ErrValidation)
	}
	h.Status = models.HackathonCompleted
	if err := s.DB.WithContext(ctx).Save(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HackathonService) ownedHackathon(ctx context.Context, id, organizerID string) (*models.Hackathon, error) {
	var h models.Hackathon
	err := s.DB.WithContext(ctx).First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("hackathon %s: %w", id, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if h.OrganizerID != organizerID {
		return nil, fmt.Errorf("hackathon belongs to another organizer: %w", ErrValidation)
	}
	return &h, nil
}

type ChallengeInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Prize       string `json:"prize"`
}

func (s *HackathonService) AddChallenge(ctx context.Context, hackathonID, organizerID string, in ChallengeInput) (*models.Challenge, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if _, err := s.ownedHackathon(ctx, hackathonID, organizerID); err != nil {
		return nil, err
	}
	ch := models.Challenge{
		ID:          uuid.NewString(),
		HackathonID: hackathonID,
		Slug:        slug.Make(in.Title),
		Title:       utils.SanitizeStrict(in.Title),
		Description: utils.SanitizeUGC(in.Description),
		Prize:       in.Prize,
	}
	if err := s.DB.WithContext(ctx).Create(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

type CriterionInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"max_score"`
	SortOrder   int     `json:"sort_order"`
}

func (s *HackathonService) AddCriterion(ctx context.Context, hackathonID, organizerID string, in CriterionInput) (*models.Criterion, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if in.MaxScore <= 0 {
		in.MaxScore = 100
	}
	if _, err := s.ownedHackathon(ctx, hackathonID, organizerID); err != nil {
		return nil, err
	}
	crit := models.Criterion{
		ID:          uuid.NewString(),
		HackathonID: hackathonID,
		Name:        utils.SanitizeStrict(in.Name),
		Description: utils.SanitizeStrict(in.Description),
		MaxScore:    in.MaxScore,
		SortOrder:   in.SortOrder,
	}
	if err := s.DB.WithContext(ctx).Create(&crit).Error; err != nil {
		return nil, err
	}
	return &crit, nil
}

// AssignJudge links a judge to the hackathon. The user must already hold
// the judge (or admin) role.
func (s *HackathonService) AssignJudge(ctx context.Context, hackathonID, organizerID, judgeUserID string) (*models.JudgeAssignment, error) {
	if _, err := s.ownedHackathon(ctx, hackathonID, organizerID); err != nil {
		return nil, err
	}
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", judgeUserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", judgeUserID, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleJudge && user.Role != models.RoleAdmin {
		return nil, fmt.Errorf("user %s is not a judge: %w", judgeUserID, ErrValidation)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.JudgeAssignment{}).
		Where("hackathon_id = ? AND user_id = ?", hackathonID, judgeUserID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("judge already assigned: %w", ErrDuplicate)
	}

	assignment := models.JudgeAssignment{
		ID:          uuid.NewString(),
		HackathonID: hackathonID,
		UserID:      judgeUserID,
	}
	if err := s.DB.WithContext(ctx).Create(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// IsAssignedJudge reports whether the user may score submissions of this
// hackathon.
func (s *HackathonService) IsAssignedJudge(ctx context.Context, hackathonID, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.JudgeAssignment{}).
		Where("hackathon_id = ? AND user_id = ?", hackathonID, userID).
		Count(&count).Error
	return count > 0, err
}

// AnnounceChallengeWinner records the winning team and pays out XP and the
// winner badge to each member, at most once per challenge.
func (s *HackathonService) AnnounceChallengeWinner(ctx context.Context, challengeID, organizerID, teamID string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.DB.WithContext(ctx).First(&ch, "id = ?", challengeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	h, err := s.ownedHackathon(ctx, ch.HackathonID, organizerID)
	if err != nil {
		return nil, err
	}
	if h.Status != models.HackathonJudging && h.Status != models.HackathonCompleted {
		return nil, fmt.Errorf("winners can only be announced during judging, status is %s: %w", h.Status, ErrValidation)
	}

	var team models.Team
	err = s.DB.WithContext(ctx).First(&team, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("team %s: %w", teamID, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if team.HackathonID != h.ID {
		return nil, fmt.Errorf("team belongs to a different hackathon: %w", ErrValidation)
	}

	now := time.Now().UTC()
	ch.WinnerTeamID = &teamID
	ch.WinnerAnnouncedAt = &now
	if err := s.DB.WithContext(ctx).Save(&ch).Error; err != nil {
		return nil, err
	}

	var members []models.TeamMember
	if err := s.DB.WithContext(ctx).Where("team_id = ?", teamID).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		awarded, err := s.Gamification.HasAwarded(ctx, m.UserID, models.EventChallengeWon, ch.ID)
		if err != nil || awarded {
			continue
		}
		if _, err := s.Gamification.AwardXP(ctx, AwardXPInput{
			UserID:      m.UserID,
			EventType:   models.EventChallengeWon,
			Points:      ChallengeWinXP,
			RefType:     "challenge",
			RefID:       ch.ID,
			HackathonID: h.ID,
		}); err != nil {
			utils.Sugar.Warnw("challenge win XP failed", "user_id", m.UserID, "challenge_id", ch.ID, "error", err)
			continue
		}
		if err := s.Gamification.AwardBadge(ctx, m.UserID, "challenge-winner"); err != nil {
			utils.Sugar.Warnw("challenge winner badge failed", "user_id", m.UserID, "error", err)
		}
	}
	return &ch, nil
}
