package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/models"
)

var ErrSongNotFound = errors.New("song not found")

type SongRepository interface {
	CreateSong(song *models.Song) error
	GetSongByID(id string) (*models.Song, error)
	GetAllSongs() ([]models.Song, error)
	GetAllSongsWithLikeStatus(userID uint) ([]models.Song, error)
	GetSongsByArtist(artistID uint) ([]models.Song, error)
	UpdateSong(song *models.Song) error
	DeleteSong(id string) error
	IsSongLikedByUser(songID string, userID uint, day string) (bool, error)
}

type songRepo struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepo{db: db}
}

func (r *songRepo) CreateSong(song *models.Song) error {
	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	return r.db.Create(song).Error
}

func (r *songRepo) GetSongByID(id string) (*models.Song, error) {
	var song models.Song
	err := r.db.First(&song, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &song, nil
}

func (r *songRepo) GetAllSongs() ([]models.Song, error) {
	var songs []models.Song
	err := r.db.Order("created_at DESC").Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	r.fillArtistNames(songs)
	return songs, nil
}

func (r *songRepo) GetAllSongsWithLikeStatus(userID uint) ([]models.Song, error) {
	songs, err := r.GetAllSongs()
	if err != nil {
		return nil, err
	}

	// Liked state is today's free like only. Yesterday's likes are no longer
	// active and gifts are not hearts, same filter as IsSongLikedByUser.
	var likedSongIDs []string
	err = r.db.Model(&models.LikeRecord{}).
		Where("user_id = ? AND day = ? AND kind = ?",
			userID, models.LikeDay(time.Now()), models.LikeKindFree).
		Pluck("song_id", &likedSongIDs).Error
	if err != nil {
		return nil, err
	}

	likedMap := make(map[string]bool)
	for _, id := range likedSongIDs {
		likedMap[id] = true
	}
	for i := range songs {
		songs[i].IsLiked = likedMap[songs[i].ID]
	}
	return songs, nil
}

func (r *songRepo) GetSongsByArtist(artistID uint) ([]models.Song, error) {
	var songs []models.Song
	err := r.db.Where("artist_id = ?", artistID).Order("created_at DESC").Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func (r *songRepo) UpdateSong(song *models.Song) error {
	return r.db.Save(song).Error
}

func (r *songRepo) DeleteSong(id string) error {
	result := r.db.Delete(&models.Song{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSongNotFound
	}
	return nil
}

func (r *songRepo) IsSongLikedByUser(songID string, userID uint, day string) (bool, error) {
	var count int64
	err := r.db.Model(&models.LikeRecord{}).
		Where("song_id = ? AND user_id = ? AND day = ? AND kind = ?",
			songID, userID, day, models.LikeKindFree).
		Count(&count).Error
	return count > 0, err
}

func (r *songRepo) fillArtistNames(songs []models.Song) {
	if len(songs) == 0 {
		return
	}
	artistIDs := make([]uint, 0, len(songs))
	seen := make(map[uint]bool)
	for _, song := range songs {
		if !seen[song.ArtistID] {
			seen[song.ArtistID] = true
			artistIDs = append(artistIDs, song.ArtistID)
		}
	}

	var artists []models.Artist
	if err := r.db.Select("id", "name").Where("id IN ?", artistIDs).Find(&artists).Error; err != nil {
		return
	}
	names := make(map[uint]string, len(artists))
	for _, artist := range artists {
		names[artist.ID] = artist.Name
	}
	for i := range songs {
		songs[i].ArtistName = names[songs[i].ArtistID]
	}
}
