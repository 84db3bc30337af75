package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Ropeth/songchart/internal/config"
	"github.com/Ropeth/songchart/internal/database"
	"github.com/Ropeth/songchart/internal/handlers"
	"github.com/Ropeth/songchart/internal/models"
	"github.com/Ropeth/songchart/internal/repository"
)

// newArtistRouter wires the artist song routes with a stub auth layer that
// injects the given artist id, sidestepping JWT for these tests.
func newArtistRouter(t *testing.T, artistID uint) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	handler := handlers.NewArtistHandler(
		repository.NewArtistRepository(db),
		repository.NewUserRepository(db),
		repository.NewSongRepository(db),
		nil,
		&config.Config{PayoutThreshold: 2000},
	)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("artist_id", artistID)
		c.Next()
	})
	router.PUT("/api/artist/songs/:song_id", handler.UpdateSong)
	router.DELETE("/api/artist/songs/:song_id", handler.DeleteSong)
	return router, db
}

func createArtistWithSong(t *testing.T, db *gorm.DB, suffix string) (*models.Artist, *models.Song) {
	t.Helper()

	owner := &models.User{
		Username: "artist-" + suffix,
		Email:    suffix + "@example.com",
		Password: "hashed",
		Role:     models.RoleArtist,
	}
	require.NoError(t, db.Create(owner).Error)

	artist := &models.Artist{UserID: owner.ID, Name: "Band " + suffix}
	require.NoError(t, db.Create(artist).Error)

	song := &models.Song{
		ID:       "aaaaaaaa-bbbb-cccc-dddd-00000000000" + suffix[len(suffix)-1:],
		ArtistID: artist.ID,
		Title:    "Track " + suffix,
	}
	require.NoError(t, db.Create(song).Error)
	return artist, song
}

func TestUpdateSong_OwnerCanEdit(t *testing.T) {
	router, db := newArtistRouter(t, 1)
	_, song := createArtistWithSong(t, db, "one1")

	req := httptest.NewRequest(http.MethodPut, "/api/artist/songs/"+song.ID,
		strings.NewReader(`{"title":"Renamed Track"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.Song
	require.NoError(t, db.First(&got, "id = ?", song.ID).Error)
	assert.Equal(t, "Renamed Track", got.Title)
}

func TestUpdateSong_NotOwnerForbidden(t *testing.T) {
	// The router authenticates as artist 2, the song belongs to artist 1.
	router, db := newArtistRouter(t, 2)
	_, song := createArtistWithSong(t, db, "one2")
	createArtistWithSong(t, db, "two3")

	req := httptest.NewRequest(http.MethodPut, "/api/artist/songs/"+song.ID,
		strings.NewReader(`{"title":"Hijacked"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var got models.Song
	require.NoError(t, db.First(&got, "id = ?", song.ID).Error)
	assert.Equal(t, song.Title, got.Title)
}

func TestDeleteSong_UnknownSongNotFound(t *testing.T) {
	router, _ := newArtistRouter(t, 1)

	req := httptest.NewRequest(http.MethodDelete,
		"/api/artist/songs/aaaaaaaa-bbbb-cccc-dddd-999999999999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSong_InvalidIDRejected(t *testing.T) {
	router, _ := newArtistRouter(t, 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/artist/songs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
