package models

import (
	"time"
)

type Artist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Location  string    `gorm:"type:varchar(255)" json:"location"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Stripe Connect state, set by the account.updated webhook.
	PayoutAccountID string `gorm:"type:varchar(255)" json:"payout_account_id"`
	PayoutsEnabled  bool   `gorm:"default:false" json:"payouts_enabled"`

	// Earnings ledger, pence. PendingEarnings only goes to zero through a
	// confirmed Stripe transfer.
	PendingEarnings int64      `gorm:"not null;default:0" json:"pending_earnings"`
	TotalPaidOut    int64      `gorm:"not null;default:0" json:"total_paid_out"`
	LastPayoutAt    *time.Time `json:"last_payout_at,omitempty"`

	// Relationships
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Songs []Song `gorm:"foreignKey:ArtistID" json:"songs,omitempty"`
}

type ArtistRegister struct {
	Name     string `json:"name" binding:"required,min=2"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	ImageURL string `json:"image_url"`
}

type ArtistUpdate struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	ImageURL string `json:"image_url"`
}

// EarningsSummary backs the artist earnings panel.
type EarningsSummary struct {
	PendingEarnings int64      `json:"pending_earnings"`
	TotalPaidOut    int64      `json:"total_paid_out"`
	PayoutThreshold int64      `json:"payout_threshold"`
	Connected       bool       `json:"connected"`
	PayoutsEnabled  bool       `json:"payouts_enabled"`
	LastPayoutAt    *time.Time `json:"last_payout_at,omitempty"`
}
