package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/models"
)

var (
	ErrInsufficientBalance       = errors.New("insufficient free like balance")
	ErrInsufficientBoughtBalance = errors.New("insufficient bought like balance")
	ErrAlreadyLiked              = errors.New("song already liked today")
	ErrNotLiked                  = errors.New("song not liked today")
)

type LikeRepository interface {
	// PlaceFreeLike debits one free like and records it for (user, song, day).
	// Both writes happen in one transaction so the balance and the record set
	// stay in lockstep even under partial failure.
	PlaceFreeLike(userID uint, songID string, now time.Time) (*models.LikeRecord, error)

	// RemoveFreeLike deletes today's free like and credits the balance back,
	// capped. Bought likes cannot be removed.
	RemoveFreeLike(userID uint, songID string, now time.Time) error

	// PlaceBoughtLike debits one bought like, records it, and credits the
	// owning artist's pending earnings by the per-like payout.
	PlaceBoughtLike(userID uint, songID string, now time.Time) (*models.LikeRecord, error)

	FreeLikesForUserToday(userID uint, now time.Time) (map[string]uint, error)
	BoughtLikesForUserToday(userID uint, now time.Time) (map[string]int, error)
	GetUserLikes(userID uint) ([]models.LikeRecord, error)
}

type likeRepo struct {
	db            *gorm.DB
	freeLikeCap   int
	payoutPerLike int64
}

func NewLikeRepository(db *gorm.DB, freeLikeCap int, payoutPerLike int64) LikeRepository {
	return &likeRepo{db: db, freeLikeCap: freeLikeCap, payoutPerLike: payoutPerLike}
}

func (r *likeRepo) PlaceFreeLike(userID uint, songID string, now time.Time) (*models.LikeRecord, error) {
	day := models.LikeDay(now)
	dedup := models.FreeLikeDedupKey(userID, songID, day)
	like := &models.LikeRecord{
		UserID:   userID,
		SongID:   songID,
		Day:      day,
		Kind:     models.LikeKindFree,
		DedupKey: &dedup,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Debit first so a zero balance rejects before anything is written.
		result := tx.Model(&models.User{}).
			Where("id = ? AND free_like_balance > 0", userID).
			UpdateColumn("free_like_balance", gorm.Expr("free_like_balance - ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		// The unique dedup key turns a same-day duplicate into a constraint
		// violation, which rolls the debit back.
		if err := tx.Create(like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (r *likeRepo) RemoveFreeLike(userID uint, songID string, now time.Time) error {
	day := models.LikeDay(now)

	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND song_id = ? AND day = ? AND kind = ?",
			userID, songID, day, models.LikeKindFree).
			Delete(&models.LikeRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotLiked
		}

		// Credit back, capped. Hitting the cap is a policy no-op.
		credit := tx.Model(&models.User{}).
			Where("id = ? AND free_like_balance < ?", userID, r.freeLikeCap).
			UpdateColumn("free_like_balance", gorm.Expr("free_like_balance + ?", 1))
		return credit.Error
	})
}

func (r *likeRepo) PlaceBoughtLike(userID uint, songID string, now time.Time) (*models.LikeRecord, error) {
	like := &models.LikeRecord{
		UserID: userID,
		SongID: songID,
		Day:    models.LikeDay(now),
		Kind:   models.LikeKindBought,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND bought_like_balance > 0", userID).
			UpdateColumn("bought_like_balance", gorm.Expr("bought_like_balance - ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientBoughtBalance
		}

		if err := tx.Create(like).Error; err != nil {
			return err
		}

		var song models.Song
		if err := tx.Select("artist_id").First(&song, "id = ?", songID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSongNotFound
			}
			return err
		}

		credit := tx.Model(&models.Artist{}).
			Where("id = ?", song.ArtistID).
			UpdateColumn("pending_earnings", gorm.Expr("pending_earnings + ?", r.payoutPerLike))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return ErrArtistNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

// FreeLikesForUserToday returns songID -> like record id, so the client can
// both render liked state and remove a like without a second lookup.
func (r *likeRepo) FreeLikesForUserToday(userID uint, now time.Time) (map[string]uint, error) {
	var likes []models.LikeRecord
	err := r.db.Where("user_id = ? AND day = ? AND kind = ?",
		userID, models.LikeDay(now), models.LikeKindFree).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}

	likeMap := make(map[string]uint, len(likes))
	for _, like := range likes {
		likeMap[like.SongID] = like.ID
	}
	return likeMap, nil
}

func (r *likeRepo) BoughtLikesForUserToday(userID uint, now time.Time) (map[string]int, error) {
	var likes []models.LikeRecord
	err := r.db.Where("user_id = ? AND day = ? AND kind = ?",
		userID, models.LikeDay(now), models.LikeKindBought).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, like := range likes {
		counts[like.SongID]++
	}
	return counts, nil
}

func (r *likeRepo) GetUserLikes(userID uint) ([]models.LikeRecord, error) {
	var likes []models.LikeRecord
	err := r.db.Preload("Song").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&likes).Error
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []models.LikeRecord{}
	}
	return likes, nil
}
