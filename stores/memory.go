package stores

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hackathon-platform/models"
)

// In-memory store implementations, used by engine tests and local fixtures.
// Each store exposes a dedicated Reset method; fixtures reset stores
// explicitly rather than enumerating persisted state generically.

type gamData struct {
	profiles      map[string]models.GamificationProfile // by userID
	events        []models.XpEvent
	badges        map[string]models.Badge // by slug
	profileBadges map[string][]models.ProfileBadge
}

type MemGamificationStore struct {
	mu   sync.Mutex
	data *gamData
	inTx bool
}

func NewMemGamificationStore() *MemGamificationStore {
	s := &MemGamificationStore{}
	s.data = emptyGamData()
	return s
}

func emptyGamData() *gamData {
	return &gamData{
		profiles:      map[string]models.GamificationProfile{},
		badges:        map[string]models.Badge{},
		profileBadges: map[string][]models.ProfileBadge{},
	}
}

// Reset drops all profiles, events, and badges.
func (s *MemGamificationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = emptyGamData()
}

// SeedBadges loads catalog entries for tests.
func (s *MemGamificationStore) SeedBadges(badges ...models.Badge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range badges {
		s.data.badges[b.Slug] = b
	}
}

func (s *MemGamificationStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemGamificationStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemGamificationStore) InTx(ctx context.Context, fn func(tx GamificationStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&MemGamificationStore{data: s.data, inTx: true})
}

func (s *MemGamificationStore) GetProfile(ctx context.Context, userID string) (*models.GamificationProfile, error) {
	s.lock()
	defer s.unlock()
	prof, ok := s.data.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &prof, nil
}

// GetProfileForUpdate needs no row lock here: the store mutex already
// serializes entire transactions.
func (s *MemGamificationStore) GetProfileForUpdate(ctx context.Context, userID string) (*models.GamificationProfile, error) {
	return s.GetProfile(ctx, userID)
}

func (s *MemGamificationStore) CreateProfile(ctx context.Context, p *models.GamificationProfile) error {
	s.lock()
	defer s.unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.data.profiles[p.UserID] = *p
	return nil
}

func (s *MemGamificationStore) SaveProfile(ctx context.Context, p *models.GamificationProfile) error {
	s.lock()
	defer s.unlock()
	s.data.profiles[p.UserID] = *p
	return nil
}

func (s *MemGamificationStore) TopProfiles(ctx context.Context, limit int) ([]models.GamificationProfile, error) {
	s.lock()
	defer s.unlock()
	profiles := make([]models.GamificationProfile, 0, len(s.data.profiles))
	for _, p := range s.data.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].XP != profiles[j].XP {
			return profiles[i].XP > profiles[j].XP
		}
		return profiles[i].UserID < profiles[j].UserID
	})
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

func (s *MemGamificationStore) AppendEvent(ctx context.Context, e *models.XpEvent) error {
	s.lock()
	defer s.unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.data.events = append(s.data.events, *e)
	return nil
}

func (s *MemGamificationStore) RecentEvents(ctx context.Context, userID string, limit int) ([]models.XpEvent, error) {
	s.lock()
	defer s.unlock()
	var events []models.XpEvent
	for _, e := range s.data.events {
		if e.UserID == userID {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (s *MemGamificationStore) HasEvent(ctx context.Context, userID, eventType, refID string) (bool, error) {
	s.lock()
	defer s.unlock()
	for _, e := range s.data.events {
		if e.UserID == userID && e.EventType == eventType && (refID == "" || e.RefID == refID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemGamificationStore) SumPointsByUser(ctx context.Context, hackathonID string, since time.Time, limit int) ([]UserPoints, error) {
	s.lock()
	defer s.unlock()
	sums := map[string]int64{}
	for _, e := range s.data.events {
		if hackathonID != "" && e.HackathonID != hackathonID {
			continue
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		sums[e.UserID] += e.Points
	}
	rows := make([]UserPoints, 0, len(sums))
	for userID, points := range sums {
		rows = append(rows, UserPoints{UserID: userID, Points: points})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].UserID < rows[j].UserID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MemGamificationStore) GetBadge(ctx context.Context, slug string) (*models.Badge, error) {
	s.lock()
	defer s.unlock()
	badge, ok := s.data.badges[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return &badge, nil
}

func (s *MemGamificationStore) HasProfileBadge(ctx context.Context, userID, slug string) (bool, error) {
	s.lock()
	defer s.unlock()
	for _, pb := range s.data.profileBadges[userID] {
		if pb.BadgeSlug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemGamificationStore) AddProfileBadge(ctx context.Context, pb *models.ProfileBadge) error {
	s.lock()
	defer s.unlock()
	if pb.ID == "" {
		pb.ID = uuid.NewString()
	}
	if pb.AwardedAt.IsZero() {
		pb.AwardedAt = time.Now()
	}
	s.data.profileBadges[pb.UserID] = append(s.data.profileBadges[pb.UserID], *pb)
	return nil
}

func (s *MemGamificationStore) ProfileBadges(ctx context.Context, userID string) ([]models.ProfileBadge, error) {
	s.lock()
	defer s.unlock()
	badges := make([]models.ProfileBadge, len(s.data.profileBadges[userID]))
	copy(badges, s.data.profileBadges[userID])
	return badges, nil
}

type judgingData struct {
	criteria    map[string]models.Criterion
	submissions map[string]models.Submission
	teamMembers map[string]map[string]bool // teamID -> userID set
	scores      map[string]models.Score    // by score ID
}

type MemJudgingStore struct {
	mu   sync.Mutex
	data *judgingData
	inTx bool
}

func NewMemJudgingStore() *MemJudgingStore {
	s := &MemJudgingStore{}
	s.data = emptyJudgingData()
	return s
}

func emptyJudgingData() *judgingData {
	return &judgingData{
		criteria:    map[string]models.Criterion{},
		submissions: map[string]models.Submission{},
		teamMembers: map[string]map[string]bool{},
		scores:      map[string]models.Score{},
	}
}

// Reset drops all criteria, submissions, memberships, and scores.
func (s *MemJudgingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = emptyJudgingData()
}

// Seed helpers for tests and fixtures.

func (s *MemJudgingStore) SeedCriterion(c models.Criterion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.criteria[c.ID] = c
}

func (s *MemJudgingStore) SeedSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.submissions[sub.ID] = sub
}

func (s *MemJudgingStore) SeedTeamMember(teamID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.teamMembers[teamID] == nil {
		s.data.teamMembers[teamID] = map[string]bool{}
	}
	s.data.teamMembers[teamID][userID] = true
}

func (s *MemJudgingStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemJudgingStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemJudgingStore) InTx(ctx context.Context, fn func(tx JudgingStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&MemJudgingStore{data: s.data, inTx: true})
}

func (s *MemJudgingStore) GetCriterion(ctx context.Context, id string) (*models.Criterion, error) {
	s.lock()
	defer s.unlock()
	crit, ok := s.data.criteria[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &crit, nil
}

func (s *MemJudgingStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	s.lock()
	defer s.unlock()
	sub, ok := s.data.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *MemJudgingStore) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	s.lock()
	defer s.unlock()
	return s.data.teamMembers[teamID][userID], nil
}

func (s *MemJudgingStore) TeamMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	s.lock()
	defer s.unlock()
	var ids []string
	for id := range s.data.teamMembers[teamID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemJudgingStore) GetScore(ctx context.Context, submissionID, judgeID, criterionID string) (*models.Score, error) {
	s.lock()
	defer s.unlock()
	for _, score := range s.data.scores {
		if score.SubmissionID == submissionID && score.JudgeID == judgeID && score.CriterionID == criterionID {
			return &score, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemJudgingStore) CreateScore(ctx context.Context, score *models.Score) error {
	s.lock()
	defer s.unlock()
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	s.data.scores[score.ID] = *score
	return nil
}

func (s *MemJudgingStore) SaveScore(ctx context.Context, score *models.Score) error {
	s.lock()
	defer s.unlock()
	s.data.scores[score.ID] = *score
	return nil
}

func (s *MemJudgingStore) DeleteScore(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	delete(s.data.scores, id)
	return nil
}

func (s *MemJudgingStore) ScoresBySubmission(ctx context.Context, submissionID string) ([]models.Score, error) {
	s.lock()
	defer s.unlock()
	var scores []models.Score
	for _, score := range s.data.scores {
		if score.SubmissionID == submissionID {
			scores = append(scores, score)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].ID < scores[j].ID })
	return scores, nil
}

func (s *MemJudgingStore) SetSubmissionAggregate(ctx context.Context, submissionID string, aggregate *float64) error {
	s.lock()
	defer s.unlock()
	sub, ok := s.data.submissions[submissionID]
	if !ok {
		return ErrNotFound
	}
	sub.ScoreAggregate = aggregate
	s.data.submissions[submissionID] = sub
	return nil
}

func (s *MemJudgingStore) ScoredSubmissions(ctx context.Context, hackathonID string) ([]models.Submission, error) {
	s.lock()
	defer s.unlock()
	var subs []models.Submission
	for _, sub := range s.data.submissions {
		if sub.HackathonID == hackathonID && sub.ScoreAggregate != nil {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (s *MemJudgingStore) ClearRanks(ctx context.Context, hackathonID string) error {
	s.lock()
	defer s.unlock()
	for id, sub := range s.data.submissions {
		if sub.HackathonID == hackathonID {
			sub.Rank = nil
			s.data.submissions[id] = sub
		}
	}
	return nil
}

func (s *MemJudgingStore) SetSubmissionRank(ctx context.Context, submissionID string, rank *int) error {
	s.lock()
	defer s.unlock()
	sub, ok := s.data.submissions[submissionID]
	if !ok {
		return ErrNotFound
	}
	sub.Rank = rank
	s.data.submissions[submissionID] = sub
	return nil
}
