package models

import (
	"time"

	"gorm.io/datatypes"
)

// OutboxEvent queues a search-index update. Rows are written in the same
// transaction as the entity change and drained by the search sync worker.
type OutboxEvent struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	EntityType string         `json:"entity_type" gorm:"index;not null"` // user | hackathon | submission
	EntityID   string         `json:"entity_id" gorm:"not null"`
	Op         string         `json:"op" gorm:"not null"` // UPSERT | DELETE
	Payload    datatypes.JSON `json:"payload,omitempty"`
	Processed  bool           `json:"processed" gorm:"default:false;index"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// DeadLetter holds outbox events that failed to index after being marked
// processed, for manual replay.
type DeadLetter struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OutboxID   int64          `json:"outbox_id" gorm:"index"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Op         string         `json:"op"`
	ErrorMsg   string         `json:"error_msg" gorm:"type:text"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	Resolved   bool           `json:"resolved" gorm:"default:false"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
}
