package repository_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Ropeth/songchart/internal/database"
	"github.com/Ropeth/songchart/internal/models"
)

const (
	testFreeLikeCap   = 100
	testPayoutPerLike = int64(10)
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// seedSeq makes every seeded identity unique, so one test can seed several
// users without tripping the unique indexes on username and email.
var seedSeq atomic.Uint64

func seedTag(t *testing.T) string {
	return fmt.Sprintf("%s-%d", t.Name(), seedSeq.Add(1))
}

func seedUser(t *testing.T, db *gorm.DB, freeBalance, boughtBalance int) *models.User {
	t.Helper()

	tag := seedTag(t)
	user := &models.User{
		Username:          "fan-" + tag,
		Email:             tag + "@example.com",
		Password:          "hashed",
		Role:              models.RoleFan,
		FreeLikeBalance:   freeBalance,
		BoughtLikeBalance: boughtBalance,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedArtistWithSong(t *testing.T, db *gorm.DB) (*models.Artist, *models.Song) {
	t.Helper()

	tag := seedTag(t)
	owner := &models.User{
		Username: "artist-" + tag,
		Email:    tag + "-artist@example.com",
		Password: "hashed",
		Role:     models.RoleArtist,
	}
	require.NoError(t, db.Create(owner).Error)

	artist := &models.Artist{
		UserID: owner.ID,
		Name:   "The Test Pilots",
	}
	require.NoError(t, db.Create(artist).Error)

	song := &models.Song{
		ID:       "11111111-2222-3333-4444-" + padSuffix(t.Name()),
		ArtistID: artist.ID,
		Title:    "First Single",
	}
	require.NoError(t, db.Create(song).Error)

	return artist, song
}

// padSuffix builds a 12-char uuid tail that is unique per test.
func padSuffix(name string) string {
	sum := 0
	for _, r := range name {
		sum = sum*31 + int(r)
	}
	if sum < 0 {
		sum = -sum
	}
	digits := "000000000000"
	s := []byte(digits)
	for i := len(s) - 1; i >= 0 && sum > 0; i-- {
		s[i] = byte('0' + sum%10)
		sum /= 10
	}
	return string(s)
}
