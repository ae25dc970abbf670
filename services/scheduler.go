package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"hackathon-platform/models"
	"hackathon-platform/utils"
)

// StartLifecycleScheduler drives time-based hackathon transitions:
// published hackathons go active when StartTime passes, active ones move
// to judging when EndTime passes. Completion stays a manual organizer
// action.
func (s *HackathonService) StartLifecycleScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		utils.Sugar.Errorw("scheduler init failed", "error", err)
		return
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now().UTC()
			s.transition(models.HackathonPublished, models.HackathonActive, "start_time <= ?", now)
			s.transition(models.HackathonActive, models.HackathonJudging, "end_time <= ?", now)
		}),
	)
}

func (s *HackathonService) transition(from, to, cond string, now time.Time) {
	var hackathons []models.Hackathon
	if err := s.DB.Where("status = ?", from).Where(cond, now).Find(&hackathons).Error; err != nil {
		utils.Sugar.Errorw("scheduler query failed", "from", from, "error", err)
		return
	}
	for _, h := range hackathons {
		h.Status = to
		if err := s.DB.Save(&h).Error; err != nil {
			utils.Sugar.Errorw("status transition failed", "hackathon_id", h.ID, "to", to, "error", err)
			continue
		}
		utils.Sugar.Infow("hackathon status transition", "hackathon_id", h.ID, "slug", h.Slug, "from", from, "to", to)
	}
}
