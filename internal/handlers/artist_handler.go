package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ropeth/songchart/internal/config"
	"github.com/Ropeth/songchart/internal/models"
	"github.com/Ropeth/songchart/internal/repository"
	"github.com/Ropeth/songchart/internal/services"
)

type ArtistHandler struct {
	artistRepo repository.ArtistRepository
	userRepo   repository.UserRepository
	songRepo   repository.SongRepository
	uploads    services.UploadService
	config     *config.Config
}

func NewArtistHandler(
	artistRepo repository.ArtistRepository,
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	uploads services.UploadService,
	cfg *config.Config,
) *ArtistHandler {
	return &ArtistHandler{
		artistRepo: artistRepo,
		userRepo:   userRepo,
		songRepo:   songRepo,
		uploads:    uploads,
		config:     cfg,
	}
}

// RegisterArtist upgrades the signed-in fan to an artist and creates their
// profile.
func (h *ArtistHandler) RegisterArtist(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.ArtistRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	if existing, err := h.artistRepo.FindArtistByUserID(userID); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "Artist profile already exists",
		})
		return
	}

	artist := &models.Artist{
		UserID:   userID,
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		ImageURL: req.ImageURL,
	}

	if err := h.artistRepo.CreateArtist(artist); err != nil {
		log.Printf("[RegisterArtist] ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to create artist profile",
		})
		return
	}

	if err := h.userRepo.UpgradeToArtist(userID); err != nil {
		log.Printf("[RegisterArtist] role upgrade failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to upgrade user role",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Artist registered successfully",
		"data":    artist,
	})
}

// GetArtist is the public artist page: profile plus songs.
func (h *ArtistHandler) GetArtist(c *gin.Context) {
	artistID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid artist ID format",
		})
		return
	}

	artist, err := h.artistRepo.FindArtistByID(uint(artistID))
	if err != nil {
		if errors.Is(err, repository.ErrArtistNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Artist not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch artist",
		})
		return
	}

	songs, err := h.songRepo.GetSongsByArtist(artist.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch artist songs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"artist": gin.H{
				"id":        artist.ID,
				"name":      artist.Name,
				"bio":       artist.Bio,
				"location":  artist.Location,
				"image_url": artist.ImageURL,
			},
			"songs": songs,
		},
	})
}

func (h *ArtistHandler) UpdateProfile(c *gin.Context) {
	artistID := c.GetUint("artist_id")

	var req models.ArtistUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
		})
		return
	}

	artist, err := h.artistRepo.FindArtistByID(artistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch artist",
		})
		return
	}

	if req.Name != "" {
		artist.Name = req.Name
	}
	if req.Bio != "" {
		artist.Bio = req.Bio
	}
	if req.Location != "" {
		artist.Location = req.Location
	}
	if req.ImageURL != "" {
		artist.ImageURL = req.ImageURL
	}

	if err := h.artistRepo.UpdateArtist(artist); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update artist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Artist updated successfully",
		"data":    artist,
	})
}

// GetEarnings backs the earnings panel: pending balance, lifetime payouts,
// threshold, and Stripe connection state.
func (h *ArtistHandler) GetEarnings(c *gin.Context) {
	artistID := c.GetUint("artist_id")

	artist, err := h.artistRepo.FindArtistByID(artistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch artist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": models.EarningsSummary{
			PendingEarnings: artist.PendingEarnings,
			TotalPaidOut:    artist.TotalPaidOut,
			PayoutThreshold: h.config.PayoutThreshold,
			Connected:       artist.PayoutAccountID != "",
			PayoutsEnabled:  artist.PayoutsEnabled,
			LastPayoutAt:    artist.LastPayoutAt,
		},
	})
}

func (h *ArtistHandler) GetMySongs(c *gin.Context) {
	artistID := c.GetUint("artist_id")

	songs, err := h.songRepo.GetSongsByArtist(artistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch songs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Songs fetched successfully",
		"data":    songs,
	})
}

func (h *ArtistHandler) CreateSong(c *gin.Context) {
	artistID := c.GetUint("artist_id")

	var req models.SongCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	song := &models.Song{
		ArtistID: artistID,
		Title:    req.Title,
		AudioURL: req.AudioURL,
		ImageURL: req.ImageURL,
	}

	if err := h.songRepo.CreateSong(song); err != nil {
		log.Printf("[CreateSong] ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to create song",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Song created successfully",
		"data":    song,
	})
}

// UploadSongMedia attaches an audio file and/or cover image to an owned song.
// Multipart form fields: "audio", "image".
func (h *ArtistHandler) UploadSongMedia(c *gin.Context) {
	artistID := c.GetUint("artist_id")
	songID := c.Param("song_id")

	song, ok := h.ownedSong(c, artistID, songID)
	if !ok {
		return
	}

	if h.uploads == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Uploads not configured",
		})
		return
	}

	uploaded := false

	if fileHeader, err := c.FormFile("audio"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to open audio file"})
			return
		}
		defer file.Close()

		url, err := h.uploads.UploadAudio(file, song.ID)
		if err != nil {
			log.Printf("[UploadSongMedia] audio upload failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Audio upload failed"})
			return
		}
		song.AudioURL = url
		uploaded = true
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to open image file"})
			return
		}
		defer file.Close()

		url, err := h.uploads.UploadImage(file, song.ID)
		if err != nil {
			log.Printf("[UploadSongMedia] image upload failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Image upload failed"})
			return
		}
		song.ImageURL = url
		uploaded = true
	}

	if !uploaded {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "No audio or image file provided",
		})
		return
	}

	if err := h.songRepo.UpdateSong(song); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update song",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Media uploaded successfully",
		"data":    song,
	})
}

func (h *ArtistHandler) UpdateSong(c *gin.Context) {
	artistID := c.GetUint("artist_id")
	songID := c.Param("song_id")

	song, ok := h.ownedSong(c, artistID, songID)
	if !ok {
		return
	}

	var req models.SongUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
		})
		return
	}

	if req.Title != "" {
		song.Title = req.Title
	}
	if req.AudioURL != "" {
		song.AudioURL = req.AudioURL
	}
	if req.ImageURL != "" {
		song.ImageURL = req.ImageURL
	}

	if err := h.songRepo.UpdateSong(song); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update song",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song updated successfully",
		"data":    song,
	})
}

func (h *ArtistHandler) DeleteSong(c *gin.Context) {
	artistID := c.GetUint("artist_id")
	songID := c.Param("song_id")

	if _, ok := h.ownedSong(c, artistID, songID); !ok {
		return
	}

	if err := h.songRepo.DeleteSong(songID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to delete song",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song deleted successfully",
	})
}

// ownedSong loads a song and rejects the request unless it belongs to the
// calling artist. Writes the error response itself when returning !ok.
func (h *ArtistHandler) ownedSong(c *gin.Context, artistID uint, songID string) (*models.Song, bool) {
	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return nil, false
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch song",
		})
		return nil, false
	}

	if song.ArtistID != artistID {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "You do not own this song",
		})
		return nil, false
	}

	return song, true
}
