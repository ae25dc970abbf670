package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hackathon-platform/models"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
)

// NotificationService persists per-user notifications and fans engine
// events out over Redis pub/sub for the SSE stream. It implements
// Notifier, so the engines stay unaware of the delivery machinery.
type NotificationService struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewNotificationService(db *gorm.DB, rdb *redis.Client) *NotificationService {
	return &NotificationService{DB: db, Redis: rdb}
}

func notificationChannel(userID string) string {
	return "notifications:" + userID
}

var notificationTitles = map[string]string{
	EventTypeLevelUp:       "Level up!",
	EventTypeBadgeUnlocked: "Badge unlocked",
	EventTypeStreakBonus:   "Streak bonus",
	EventTypeScoreRecorded: "Score recorded",
	EventTypeRankAssigned:  "Results are in",
}

// Notify stores the notification and publishes it. Failures are logged
// and swallowed: notification delivery never fails the operation that
// produced the event.
func (s *NotificationService) Notify(ctx context.Context, event Event) {
	if event.UserID == "" {
		return
	}
	title := notificationTitles[event.Type]
	if title == "" {
		title = event.Type
	}
	body, _ := json.Marshal(event.Data)

	row := models.Notification{
		UserID: event.UserID,
		Type:   event.Type,
		Title:  title,
		Body:   string(body),
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		utils.Sugar.Warnw("notification insert failed", "user_id", event.UserID, "type", event.Type, "error", err)
		return
	}

	payload, _ := json.Marshal(row)
	if err := s.Redis.Publish(ctx, notificationChannel(event.UserID), payload).Err(); err != nil {
		utils.Sugar.Debugw("notification publish failed", "user_id", event.UserID, "error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, page, size int) ([]models.Notification, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	var rows []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error
	return rows, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, stores.ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error
}

// Stream pushes notifications to the client over SSE. New events arrive
// via Redis pub/sub; a periodic keepalive comment holds proxies open.
func (s *NotificationService) Stream(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pubsub := s.Redis.Subscribe(ctx, notificationChannel(userID))
		defer pubsub.Close()
		messages := pubsub.Channel()

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", msg.Payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
	return nil
}

// TeeNotifier fans one event out to several notifiers.
type TeeNotifier []Notifier

func (t TeeNotifier) Notify(ctx context.Context, event Event) {
	for _, n := range t {
		n.Notify(ctx, event)
	}
}

var _ Notifier = (*NotificationService)(nil)
