package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/models"
)

var ErrArtistNotFound = errors.New("artist not found")

type ArtistRepository interface {
	CreateArtist(artist *models.Artist) error
	FindArtistByID(id uint) (*models.Artist, error)
	FindArtistByUserID(userID uint) (*models.Artist, error)
	UpdateArtist(artist *models.Artist) error

	// Earnings ledger. CreditEarnings is an atomic increment; idempotency on
	// webhook redelivery is the webhook processor's job, not this ledger's.
	CreditEarnings(artistID uint, pence int64) error

	// ResetEarnings zeroes PendingEarnings and moves the amount into
	// TotalPaidOut. Callers must only invoke it after the external transfer
	// has been confirmed.
	ResetEarnings(artistID uint, amount int64, paidAt time.Time) error

	SetPayoutAccount(artistUserID uint, accountID string, payoutsEnabled bool) error
}

type artistRepo struct {
	db *gorm.DB
}

func NewArtistRepository(db *gorm.DB) ArtistRepository {
	return &artistRepo{db: db}
}

func (r *artistRepo) CreateArtist(artist *models.Artist) error {
	return r.db.Create(artist).Error
}

func (r *artistRepo) FindArtistByID(id uint) (*models.Artist, error) {
	var artist models.Artist
	err := r.db.First(&artist, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtistNotFound
		}
		return nil, err
	}
	return &artist, nil
}

func (r *artistRepo) FindArtistByUserID(userID uint) (*models.Artist, error) {
	var artist models.Artist
	err := r.db.Where("user_id = ?", userID).First(&artist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtistNotFound
		}
		return nil, err
	}
	return &artist, nil
}

func (r *artistRepo) UpdateArtist(artist *models.Artist) error {
	return r.db.Save(artist).Error
}

func (r *artistRepo) CreditEarnings(artistID uint, pence int64) error {
	result := r.db.Model(&models.Artist{}).
		Where("id = ?", artistID).
		UpdateColumn("pending_earnings", gorm.Expr("pending_earnings + ?", pence))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtistNotFound
	}
	return nil
}

func (r *artistRepo) ResetEarnings(artistID uint, amount int64, paidAt time.Time) error {
	// The pending_earnings guard means a stale caller cannot zero a balance
	// that has moved since it read the amount it paid out.
	result := r.db.Model(&models.Artist{}).
		Where("id = ? AND pending_earnings >= ?", artistID, amount).
		UpdateColumns(map[string]interface{}{
			"pending_earnings": gorm.Expr("pending_earnings - ?", amount),
			"total_paid_out":   gorm.Expr("total_paid_out + ?", amount),
			"last_payout_at":   paidAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtistNotFound
	}
	return nil
}

func (r *artistRepo) SetPayoutAccount(artistUserID uint, accountID string, payoutsEnabled bool) error {
	result := r.db.Model(&models.Artist{}).
		Where("user_id = ?", artistUserID).
		UpdateColumns(map[string]interface{}{
			"payout_account_id": accountID,
			"payouts_enabled":   payoutsEnabled,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtistNotFound
	}
	return nil
}
