package models

import (
	"fmt"
	"time"
)

const (
	LikeKindFree   = "free"
	LikeKindBought = "bought"
)

// LikeRecord is one like placed on a song. Free likes are deduplicated per
// (user, song, day) through DedupKey: the column is unique but nullable, and
// bought likes leave it nil so a user can gift the same song many times.
type LikeRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SongID    string    `gorm:"type:uuid;not null;index" json:"song_id"`
	Day       string    `gorm:"type:varchar(10);not null;index" json:"day"`
	Kind      string    `gorm:"type:varchar(10);not null" json:"kind"`
	DedupKey  *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Song Song `gorm:"foreignKey:SongID" json:"song,omitempty"`
}

// LikeDay formats t as the calendar day a free like belongs to.
func LikeDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// FreeLikeDedupKey builds the uniqueness key for a free like.
func FreeLikeDedupKey(userID uint, songID string, day string) string {
	return fmt.Sprintf("%d:%s:%s", userID, songID, day)
}

// PlayRecord is playback telemetry. DurationSeconds is advanced by heartbeats;
// CreditedMinutes tracks how many full listening windows have already been
// converted into free likes.
type PlayRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	SongID          string    `gorm:"type:uuid;not null;index" json:"song_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	CreditedMinutes int       `gorm:"not null;default:0" json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Song Song `gorm:"foreignKey:SongID" json:"song,omitempty"`
}

// ProcessedWebhookEvent records Stripe event ids that have already been
// applied, so redelivered events are acknowledged without re-crediting.
type ProcessedWebhookEvent struct {
	EventID    string    `gorm:"primaryKey;type:varchar(255)" json:"event_id"`
	Type       string    `gorm:"type:varchar(100)" json:"type"`
	ReceivedAt time.Time `json:"received_at"`
}
