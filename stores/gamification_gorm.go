package stores

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackathon-platform/models"
)

type GormGamificationStore struct {
	DB *gorm.DB
}

func NewGormGamificationStore(db *gorm.DB) *GormGamificationStore {
	return &GormGamificationStore{DB: db}
}

func (s *GormGamificationStore) InTx(ctx context.Context, fn func(tx GamificationStore) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormGamificationStore{DB: tx})
	})
}

func (s *GormGamificationStore) GetProfile(ctx context.Context, userID string) (*models.GamificationProfile, error) {
	var prof models.GamificationProfile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&prof).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

func (s *GormGamificationStore) GetProfileForUpdate(ctx context.Context, userID string) (*models.GamificationProfile, error) {
	var prof models.GamificationProfile
	err := s.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&prof).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

func (s *GormGamificationStore) CreateProfile(ctx context.Context, p *models.GamificationProfile) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *GormGamificationStore) SaveProfile(ctx context.Context, p *models.GamificationProfile) error {
	return s.DB.WithContext(ctx).Save(p).Error
}

func (s *GormGamificationStore) TopProfiles(ctx context.Context, limit int) ([]models.GamificationProfile, error) {
	var profiles []models.GamificationProfile
	err := s.DB.WithContext(ctx).
		Order("xp DESC, user_id ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func (s *GormGamificationStore) AppendEvent(ctx context.Context, e *models.XpEvent) error {
	return s.DB.WithContext(ctx).Create(e).Error
}

func (s *GormGamificationStore) RecentEvents(ctx context.Context, userID string, limit int) ([]models.XpEvent, error) {
	var events []models.XpEvent
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (s *GormGamificationStore) HasEvent(ctx context.Context, userID, eventType, refID string) (bool, error) {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.XpEvent{}).
		Where("user_id = ? AND event_type = ?", userID, eventType)
	if refID != "" {
		q = q.Where("ref_id = ?", refID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormGamificationStore) SumPointsByUser(ctx context.Context, hackathonID string, since time.Time, limit int) ([]UserPoints, error) {
	var rows []UserPoints
	q := s.DB.WithContext(ctx).Model(&models.XpEvent{}).
		Select("user_id, SUM(points) AS points")
	if hackathonID != "" {
		q = q.Where("hackathon_id = ?", hackathonID)
	}
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Group("user_id").
		Order("points DESC, user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (s *GormGamificationStore) GetBadge(ctx context.Context, slug string) (*models.Badge, error) {
	var badge models.Badge
	err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&badge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (s *GormGamificationStore) HasProfileBadge(ctx context.Context, userID, slug string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ProfileBadge{}).
		Where("user_id = ? AND badge_slug = ?", userID, slug).
		Count(&count).Error
	return count > 0, err
}

func (s *GormGamificationStore) AddProfileBadge(ctx context.Context, pb *models.ProfileBadge) error {
	return s.DB.WithContext(ctx).Create(pb).Error
}

func (s *GormGamificationStore) ProfileBadges(ctx context.Context, userID string) ([]models.ProfileBadge, error) {
	var badges []models.ProfileBadge
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&badges).Error
	return badges, err
}
