package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/models"
)

var ErrPlayNotFound = errors.New("play not found")

type PlayRepository interface {
	CreatePlay(play *models.PlayRecord) error
	GetPlayByID(id uint) (*models.PlayRecord, error)

	// AdvancePlay moves a play's duration forward and claims listening
	// windows for free-like accrual. The credited_minutes guard is optimistic:
	// if another heartbeat for the same play got there first, zero rows match
	// and the caller must not grant anything.
	AdvancePlay(playID uint, durationSeconds, fromCreditedMinutes, toCreditedMinutes int) (claimed bool, err error)

	GetUserPlays(userID uint) ([]models.PlayRecord, error)
}

type playRepo struct {
	db *gorm.DB
}

func NewPlayRepository(db *gorm.DB) PlayRepository {
	return &playRepo{db: db}
}

func (r *playRepo) CreatePlay(play *models.PlayRecord) error {
	if play.StartedAt.IsZero() {
		play.StartedAt = time.Now()
	}
	return r.db.Create(play).Error
}

func (r *playRepo) GetPlayByID(id uint) (*models.PlayRecord, error) {
	var play models.PlayRecord
	err := r.db.First(&play, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayNotFound
		}
		return nil, err
	}
	return &play, nil
}

func (r *playRepo) AdvancePlay(playID uint, durationSeconds, fromCreditedMinutes, toCreditedMinutes int) (bool, error) {
	result := r.db.Model(&models.PlayRecord{}).
		Where("id = ? AND credited_minutes = ?", playID, fromCreditedMinutes).
		UpdateColumns(map[string]interface{}{
			"duration_seconds": durationSeconds,
			"credited_minutes": toCreditedMinutes,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *playRepo) GetUserPlays(userID uint) ([]models.PlayRecord, error) {
	var plays []models.PlayRecord
	err := r.db.Preload("Song").Where("user_id = ?", userID).
		Order("started_at DESC").Find(&plays).Error
	if err != nil {
		return nil, err
	}
	if plays == nil {
		plays = []models.PlayRecord{}
	}
	return plays, nil
}
