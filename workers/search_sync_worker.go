package workers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"gorm.io/gorm"

	"hackathon-platform/metrics"
	"hackathon-platform/models"
	"hackathon-platform/search"
	"hackathon-platform/utils"
)

// SearchSyncWorker drains the outbox table into Elasticsearch. Events that
// fail to index land in the dead-letter table; the retry loop replays them.
type SearchSyncWorker struct {
	DB *gorm.DB
	ES *es.Client
}

func (w *SearchSyncWorker) Run(ctx context.Context) {
	if err := search.EnsureIndexes(ctx, w.ES); err != nil {
		utils.Sugar.Errorw("ensure search indexes failed", "error", err)
		return
	}
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				utils.Sugar.Warnw("search sync pass failed", "error", err)
			}
		}
	}
}

// fetchBatch claims a batch of unprocessed events. FOR UPDATE SKIP LOCKED
// keeps multiple workers from claiming the same rows.
func (w *SearchSyncWorker) fetchBatch(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := w.DB.WithContext(ctx).Raw(`
		WITH cte AS (
		  SELECT * FROM outbox_events
		  WHERE processed = false
		  ORDER BY id ASC
		  LIMIT ?
		  FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_events SET processed = true
		FROM cte
		WHERE outbox_events.id = cte.id
		RETURNING cte.*`, limit).Scan(&events).Error
	return events, err
}

func (w *SearchSyncWorker) processOnce(ctx context.Context) error {
	events, err := w.fetchBatch(ctx, 200)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: w.ES, FlushBytes: 5 << 20, NumWorkers: 2,
	})
	if err != nil {
		return err
	}

	for _, e := range events {
		if err := w.applyEvent(ctx, bi, e); err != nil {
			// Already marked processed; park it in the DLQ instead of
			// looping on it forever.
			metrics.OutboxFailed.Inc()
			w.putDLQ(e, err.Error())
			continue
		}
		metrics.OutboxProcessed.Inc()
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}
	stats := bi.Stats()
	utils.Sugar.Debugw("search bulk flush", "flushed", stats.NumFlushed, "failed", stats.NumFailed)
	return nil
}

func (w *SearchSyncWorker) applyEvent(ctx context.Context, bi esutil.BulkIndexer, e models.OutboxEvent) error {
	switch e.EntityType {
	case "user":
		if e.Op == "DELETE" {
			return w.add(ctx, bi, e, search.IdxUsers, "delete", nil)
		}
		var u models.User
		if err := w.DB.WithContext(ctx).First(&u, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		doc, err := search.BuildUserDoc(u)
		if err != nil {
			return err
		}
		return w.add(ctx, bi, e, search.IdxUsers, "index", doc)

	case "hackathon":
		if e.Op == "DELETE" {
			return w.add(ctx, bi, e, search.IdxHackathons, "delete", nil)
		}
		var h models.Hackathon
		if err := w.DB.WithContext(ctx).First(&h, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		doc, err := search.BuildHackathonDoc(h)
		if err != nil {
			return err
		}
		return w.add(ctx, bi, e, search.IdxHackathons, "index", doc)

	case "submission":
		if e.Op == "DELETE" {
			return w.add(ctx, bi, e, search.IdxSubmissions, "delete", nil)
		}
		var s models.Submission
		if err := w.DB.WithContext(ctx).First(&s, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		doc, err := search.BuildSubmissionDoc(s)
		if err != nil {
			return err
		}
		return w.add(ctx, bi, e, search.IdxSubmissions, "index", doc)
	}
	return fmt.Errorf("unknown entity_type=%s", e.EntityType)
}

func (w *SearchSyncWorker) add(ctx context.Context, bi esutil.BulkIndexer, e models.OutboxEvent, index, action string, body []byte) error {
	item := esutil.BulkIndexerItem{
		Action:     action,
		DocumentID: e.EntityID,
		Index:      index,
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			msg := ""
			switch {
			case err != nil:
				msg = err.Error()
			case res.Error.Reason != "":
				msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
			default:
				msg = fmt.Sprintf("status=%d failed to index", res.Status)
			}
			metrics.OutboxFailed.Inc()
			w.putDLQ(e, msg)
		},
	}
	if len(body) > 0 {
		item.Body = bytes.NewReader(body)
	}
	return bi.Add(ctx, item)
}

func (w *SearchSyncWorker) putDLQ(e models.OutboxEvent, msg string) {
	metrics.DLQEvents.Inc()
	dlq := models.DeadLetter{
		OutboxID:   e.ID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Op:         e.Op,
		ErrorMsg:   msg,
		Payload:    e.Payload,
	}
	if err := w.DB.Create(&dlq).Error; err != nil {
		utils.Sugar.Errorw("dead letter insert failed", "outbox_id", e.ID, "error", err)
		return
	}
	utils.Sugar.Warnw("outbox event dead-lettered", "outbox_id", e.ID, "entity", e.EntityType, "reason", msg)
}

// RetryDLQ periodically replays unresolved dead letters.
func (w *SearchSyncWorker) RetryDLQ(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var letters []models.DeadLetter
			if err := w.DB.WithContext(ctx).Where("resolved = false").Limit(50).Find(&letters).Error; err != nil {
				utils.Sugar.Warnw("dead letter fetch failed", "error", err)
				continue
			}
			for _, d := range letters {
				e := models.OutboxEvent{
					ID:         d.OutboxID,
					EntityType: d.EntityType,
					EntityID:   d.EntityID,
					Op:         d.Op,
					Payload:    d.Payload,
				}
				bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
					Client: w.ES, FlushBytes: 5 << 20, NumWorkers: 1,
				})
				if err != nil {
					continue
				}
				if err := w.applyEvent(ctx, bi, e); err != nil {
					_ = bi.Close(ctx)
					continue
				}
				if err := bi.Close(ctx); err != nil {
					continue
				}
				w.DB.Model(&models.DeadLetter{}).Where("id = ?", d.ID).Update("resolved", true)
				metrics.OutboxProcessed.Inc()
				utils.Sugar.Infow("dead letter resolved", "dlq_id", d.ID, "entity", d.EntityType)
			}
		}
	}
}
