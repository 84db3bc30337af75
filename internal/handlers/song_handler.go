package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ropeth/songchart/internal/models"
	"github.com/Ropeth/songchart/internal/repository"
	"github.com/Ropeth/songchart/internal/services"
)

type SongHandler struct {
	songRepo repository.SongRepository
	userRepo repository.UserRepository
	likeRepo repository.LikeRepository
	playRepo repository.PlayRepository
	accrual  *services.AccrualService
}

func NewSongHandler(
	songRepo repository.SongRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	playRepo repository.PlayRepository,
	accrual *services.AccrualService,
) *SongHandler {
	return &SongHandler{
		songRepo: songRepo,
		userRepo: userRepo,
		likeRepo: likeRepo,
		playRepo: playRepo,
		accrual:  accrual,
	}
}

// GetAllSongs returns the chart, newest first, with per-user liked state when
// a token is present.
func (h *SongHandler) GetAllSongs(c *gin.Context) {
	userID := c.GetUint("user_id")

	var songs []models.Song
	var err error

	if userID > 0 {
		songs, err = h.songRepo.GetAllSongsWithLikeStatus(userID)
	} else {
		songs, err = h.songRepo.GetAllSongs()
	}

	if err != nil {
		log.Printf("[GetAllSongs] ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch songs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Songs fetched successfully",
		"data": gin.H{
			"songs": songs,
			"metadata": gin.H{
				"total": len(songs),
			},
		},
	})
}

func (h *SongHandler) GetSongByID(c *gin.Context) {
	songID := c.Param("id")

	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}
	userID := c.GetUint("user_id")

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch song",
		})
		return
	}

	if userID > 0 {
		isLiked, err := h.songRepo.IsSongLikedByUser(songID, userID, models.LikeDay(time.Now()))
		if err != nil {
			log.Printf("[GetSongByID] liked state lookup failed for user %d: %v", userID, err)
		} else {
			song.IsLiked = isLiked
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song fetched successfully",
		"data":    song,
	})
}

// LikeSong places a free like: one per song per day, paid from the daily
// allowance balance.
func (h *SongHandler) LikeSong(c *gin.Context) {
	userID := c.GetUint("user_id")
	songID := c.Param("song_id")

	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	if _, err := h.songRepo.GetSongByID(songID); err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to fetch song"})
		return
	}

	like, err := h.likeRepo.PlaceFreeLike(userID, songID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"status":  "error",
				"message": "No free likes left, keep listening to earn more",
			})
		case errors.Is(err, repository.ErrAlreadyLiked):
			c.JSON(http.StatusConflict, gin.H{
				"status":  "error",
				"message": "Song already liked today",
			})
		default:
			log.Printf("[LikeSong] ERROR: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to like song",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song liked successfully",
		"data":    like,
	})
}

func (h *SongHandler) UnlikeSong(c *gin.Context) {
	userID := c.GetUint("user_id")
	songID := c.Param("song_id")

	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	if err := h.likeRepo.RemoveFreeLike(userID, songID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotLiked) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Like not found",
			})
			return
		}
		log.Printf("[UnlikeSong] ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to unlike song",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song unliked successfully",
	})
}

// GiftSong spends one bought like on a song. Bought likes pay the artist and
// cannot be taken back.
func (h *SongHandler) GiftSong(c *gin.Context) {
	userID := c.GetUint("user_id")
	songID := c.Param("song_id")

	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	like, err := h.likeRepo.PlaceBoughtLike(userID, songID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBoughtBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"status":  "error",
				"message": "No bought likes left, visit the shop",
			})
		case errors.Is(err, repository.ErrSongNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
		default:
			log.Printf("[GiftSong] ERROR: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to gift song",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song gifted successfully",
		"data":    like,
	})
}

// GetTodayLikes returns songID -> like id for today's free likes and
// songID -> count for today's gifts, for rendering heart state.
func (h *SongHandler) GetTodayLikes(c *gin.Context) {
	userID := c.GetUint("user_id")
	now := time.Now()

	freeLikes, err := h.likeRepo.FreeLikesForUserToday(userID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch likes",
		})
		return
	}

	boughtLikes, err := h.likeRepo.BoughtLikesForUserToday(userID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch likes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"free":   freeLikes,
			"bought": boughtLikes,
		},
	})
}

func (h *SongHandler) GetBalance(c *gin.Context) {
	userID := c.GetUint("user_id")

	free, bought, err := h.userRepo.GetBalances(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"free_like_balance":   free,
			"bought_like_balance": bought,
		},
	})
}

// StartPlay opens a play record; its id is used by progress heartbeats.
func (h *SongHandler) StartPlay(c *gin.Context) {
	userID := c.GetUint("user_id")
	songID := c.Param("song_id")

	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	if _, err := h.songRepo.GetSongByID(songID); err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to fetch song"})
		return
	}

	play := &models.PlayRecord{
		UserID:    userID,
		SongID:    songID,
		StartedAt: time.Now(),
	}
	if err := h.playRepo.CreatePlay(play); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to record play",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Play started",
		"data":    play,
	})
}

// DurationSeconds is a pointer so a zero-second heartbeat still binds;
// "required" on a plain int would reject the zero value.
type playProgressRequest struct {
	DurationSeconds *int `json:"duration_seconds" binding:"required,min=0"`
}

// PlayProgress takes a playback heartbeat and converts completed listening
// windows into free likes.
func (h *SongHandler) PlayProgress(c *gin.Context) {
	userID := c.GetUint("user_id")

	playID, err := strconv.ParseUint(c.Param("play_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid play ID format",
		})
		return
	}

	var req playProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
		})
		return
	}

	granted, err := h.accrual.RecordProgress(userID, uint(playID), *req.DurationSeconds)
	if err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Play not found",
			})
			return
		}
		log.Printf("[PlayProgress] ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to record progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Progress recorded",
		"data": gin.H{
			"free_likes_granted": granted,
		},
	})
}

func (h *SongHandler) GetUserLikes(c *gin.Context) {
	userID := c.GetUint("user_id")

	likes, err := h.likeRepo.GetUserLikes(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch likes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Likes fetched successfully",
		"data":    likes,
	})
}

func (h *SongHandler) GetUserPlays(c *gin.Context) {
	userID := c.GetUint("user_id")

	plays, err := h.playRepo.GetUserPlays(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch plays",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Plays fetched successfully",
		"data":    plays,
	})
}
