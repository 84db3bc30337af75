package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ropeth/songchart/internal/models"
)

type WebhookRepository interface {
	// MarkEventProcessed claims a Stripe event id. It returns false when the
	// id was already claimed, which is how redelivered events are detected.
	MarkEventProcessed(eventID, eventType string) (bool, error)
}

type webhookRepo struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepo{db: db}
}

func (r *webhookRepo) MarkEventProcessed(eventID, eventType string) (bool, error) {
	record := models.ProcessedWebhookEvent{
		EventID:    eventID,
		Type:       eventType,
		ReceivedAt: time.Now(),
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
