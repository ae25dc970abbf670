package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

const (
	tokenTTL = 72 * time.Hour

	// SignupXP is the one-time welcome award on registration.
	SignupXP = 50
)

type AuthService struct {
	DB           *gorm.DB
	Gamification *GamificationService
}

func NewAuthService(db *gorm.DB, gamification *GamificationService) *AuthService {
	return &AuthService{DB: db, Gamification: gamification}
}

type RegisterInput struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DisplayName string   `json:"display_name"`
	College     string   `json:"college"`
	Skills      []string `json:"skills"`
}

// Register creates the account, seeds the welcome XP and badge, and
// returns a signed token so the client is logged in immediately.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if len(in.Username) < 3 {
		return nil, "", fmt.Errorf("username must be at least 3 characters: %w", ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return nil, "", fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, "", fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", fmt.Errorf("username or email already taken: %w", ErrDuplicate)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     utils.SanitizeStrict(in.Username),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleParticipant,
		DisplayName:  utils.SanitizeStrict(in.DisplayName),
		College:      utils.SanitizeStrict(in.College),
	}
	if len(in.Skills) > 0 {
		raw, err := json.Marshal(in.Skills)
		if err != nil {
			return nil, "", fmt.Errorf("marshal skills: %w", err)
		}
		user.Skills = datatypes.JSON(raw)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return EnqueueOutbox(tx, "user", user.ID, "UPSERT", nil)
	})
	if err != nil {
		return nil, "", err
	}

	// Welcome rewards ride along; a gamification hiccup must not block the
	// registration that already committed.
	if _, err := s.Gamification.AwardXP(ctx, AwardXPInput{
		UserID: user.ID, EventType: models.EventSignup, Points: SignupXP,
		RefType: "user", RefID: user.ID,
	}); err != nil {
		utils.Sugar.Warnw("signup XP failed", "user_id", user.ID, "error", err)
	} else if err := s.Gamification.AwardBadge(ctx, user.ID, "welcome"); err != nil {
		utils.Sugar.Warnw("welcome badge failed", "user_id", user.ID, "error", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login checks credentials and counts the login toward the daily streak.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, string, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("username = ? OR email = ?", usernameOrEmail, strings.ToLower(usernameOrEmail)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	if _, err := s.Gamification.TouchDailyActivity(ctx, user.ID); err != nil {
		utils.Sugar.Warnw("daily activity touch failed", "user_id", user.ID, "error", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, stores.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UpdateProfileInput struct {
	DisplayName *string  `json:"display_name"`
	Bio         *string  `json:"bio"`
	College     *string  `json:"college"`
	Skills      []string `json:"skills"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		user.DisplayName = utils.SanitizeStrict(*in.DisplayName)
	}
	if in.Bio != nil {
		user.Bio = utils.SanitizeUGC(*in.Bio)
	}
	if in.College != nil {
		user.College = utils.SanitizeStrict(*in.College)
	}
	if in.Skills != nil {
		raw, err := json.Marshal(in.Skills)
		if err != nil {
			return nil, fmt.Errorf("marshal skills: %w", err)
		}
		user.Skills = datatypes.JSON(raw)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return EnqueueOutbox(tx, "user", user.ID, "UPSERT", nil)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole is an admin operation; role values are validated against the
// known set.
func (s *AuthService) SetRole(ctx context.Context, userID, role string) (*models.User, error) {
	switch role {
	case models.RoleParticipant, models.RoleJudge, models.RoleOrganizer, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SearchUsers filters users by username or email substring, for team
// invites and judge assignment pickers.
func (s *AuthService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []models.User
	db := s.DB.Model(&models.User{}).Limit(limit)
	if query != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if role := c.Query("role"); role != "" {
		db = db.Where("role = ?", role)
	}
	if err := db.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
	}

	type UserSummary struct {
		ID          string `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
		College     string `json:"college"`
	}
	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: u.Role, College: u.College}
	}
	return c.JSON(res)
}
