package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ropeth/songchart/internal/models"
	"github.com/Ropeth/songchart/internal/repository"
)

func TestGetAllSongsWithLikeStatus_OnlyTodaysFreeLikeCounts(t *testing.T) {
	db := newTestDB(t)
	songs := repository.NewSongRepository(db)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 5, 2)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	// A free like from yesterday is no longer active.
	_, err := likes.PlaceFreeLike(user.ID, song.ID, now.AddDate(0, 0, -1))
	require.NoError(t, err)

	chart, err := songs.GetAllSongsWithLikeStatus(user.ID)
	require.NoError(t, err)
	require.Len(t, chart, 1)
	assert.False(t, chart[0].IsLiked)

	// A bought like is a gift, not a heart.
	_, err = likes.PlaceBoughtLike(user.ID, song.ID, now)
	require.NoError(t, err)

	chart, err = songs.GetAllSongsWithLikeStatus(user.ID)
	require.NoError(t, err)
	assert.False(t, chart[0].IsLiked)

	// Today's free like is what lights the heart.
	_, err = likes.PlaceFreeLike(user.ID, song.ID, now)
	require.NoError(t, err)

	chart, err = songs.GetAllSongsWithLikeStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, chart[0].IsLiked)
}

func TestLikedStateAgreesBetweenChartAndDetail(t *testing.T) {
	db := newTestDB(t)
	songs := repository.NewSongRepository(db)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 5, 0)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	_, err := likes.PlaceFreeLike(user.ID, song.ID, now.AddDate(0, 0, -1))
	require.NoError(t, err)

	chart, err := songs.GetAllSongsWithLikeStatus(user.ID)
	require.NoError(t, err)
	require.Len(t, chart, 1)

	detail, err := songs.IsSongLikedByUser(song.ID, user.ID, models.LikeDay(now))
	require.NoError(t, err)

	assert.Equal(t, detail, chart[0].IsLiked, "chart and detail views must agree on liked state")
}
