package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hackathon-platform/models"
)

// EnqueueOutbox records a search-index update in the same transaction as
// the entity change. The search sync worker drains the table.
func EnqueueOutbox(tx *gorm.DB, entityType, entityID, op string, payload any) error {
	event := models.OutboxEvent{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal outbox payload: %w", err)
		}
		event.Payload = datatypes.JSON(raw)
	}
	return tx.Create(&event).Error
}

func marshalJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return datatypes.JSON(raw), nil
}
