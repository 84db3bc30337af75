package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleFan    = "fan"
	RoleArtist = "artist"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"type:varchar(20);default:'fan'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Like wallet. FreeLikeBalance accrues while listening (capped),
	// BoughtLikeBalance is credited by the Stripe webhook.
	FreeLikeBalance   int `gorm:"not null;default:0" json:"free_like_balance"`
	BoughtLikeBalance int `gorm:"not null;default:0" json:"bought_like_balance"`

	// Relationships
	Likes []LikeRecord `gorm:"foreignKey:UserID" json:"likes,omitempty"`
	Plays []PlayRecord `gorm:"foreignKey:UserID" json:"plays,omitempty"`
}

type UserRegister struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
