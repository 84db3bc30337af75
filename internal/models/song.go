package models

import (
	"time"
)

type Song struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ArtistID  uint      `gorm:"not null;index" json:"artist_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	AudioURL  string    `json:"audio_url"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated per request for the signed-in user, not stored.
	IsLiked    bool   `gorm:"-" json:"is_liked"`
	ArtistName string `gorm:"-" json:"artist_name,omitempty"`

	Artist Artist `gorm:"foreignKey:ArtistID" json:"-"`
}

type SongCreate struct {
	Title    string `json:"title" binding:"required,min=1"`
	AudioURL string `json:"audio_url"`
	ImageURL string `json:"image_url"`
}

type SongUpdate struct {
	Title    string `json:"title"`
	AudioURL string `json:"audio_url"`
	ImageURL string `json:"image_url"`
}
