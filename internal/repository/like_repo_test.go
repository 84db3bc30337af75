package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ropeth/songchart/internal/models"
	"github.com/Ropeth/songchart/internal/repository"
)

func TestPlaceFreeLike_DebitsBalanceAndRecords(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)
	users := repository.NewUserRepository(db)

	user := seedUser(t, db, 5, 0)
	_, song := seedArtistWithSong(t, db)

	like, err := likes.PlaceFreeLike(user.ID, song.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.LikeKindFree, like.Kind)
	assert.Equal(t, song.ID, like.SongID)

	free, _, err := users.GetBalances(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, free)
}

func TestPlaceFreeLike_InsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)
	users := repository.NewUserRepository(db)

	user := seedUser(t, db, 0, 0)
	_, song := seedArtistWithSong(t, db)

	_, err := likes.PlaceFreeLike(user.ID, song.ID, time.Now())
	require.ErrorIs(t, err, repository.ErrInsufficientBalance)

	free, _, err := users.GetBalances(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, free)

	var count int64
	require.NoError(t, db.Model(&models.LikeRecord{}).Count(&count).Error)
	assert.Zero(t, count, "no record should exist after a rejected like")
}

func TestPlaceFreeLike_SameDayDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)
	users := repository.NewUserRepository(db)

	user := seedUser(t, db, 5, 0)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	_, err := likes.PlaceFreeLike(user.ID, song.ID, now)
	require.NoError(t, err)

	_, err = likes.PlaceFreeLike(user.ID, song.ID, now)
	require.ErrorIs(t, err, repository.ErrAlreadyLiked)

	// The rejected attempt must roll its debit back.
	free, _, err := users.GetBalances(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, free)
}

func TestPlaceFreeLike_NewDayAllowsLikingAgain(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 5, 0)
	_, song := seedArtistWithSong(t, db)

	yesterday := time.Now().AddDate(0, 0, -1)
	_, err := likes.PlaceFreeLike(user.ID, song.ID, yesterday)
	require.NoError(t, err)

	_, err = likes.PlaceFreeLike(user.ID, song.ID, time.Now())
	require.NoError(t, err)
}

func TestFreeLike_RoundTripRestoresBalance(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)
	users := repository.NewUserRepository(db)

	user := seedUser(t, db, 7, 0)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	_, err := likes.PlaceFreeLike(user.ID, song.ID, now)
	require.NoError(t, err)
	require.NoError(t, likes.RemoveFreeLike(user.ID, song.ID, now))

	free, _, err := users.GetBalances(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, free, "unlike must restore the exact prior balance")

	var count int64
	require.NoError(t, db.Model(&models.LikeRecord{}).Count(&count).Error)
	assert.Zero(t, count, "round trip must leave no like record")
}

func TestRemoveFreeLike_NotLiked(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 3, 0)
	_, song := seedArtistWithSong(t, db)

	err := likes.RemoveFreeLike(user.ID, song.ID, time.Now())
	require.ErrorIs(t, err, repository.ErrNotLiked)
}

func TestRemoveFreeLike_CreditCappedAtMax(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)
	users := repository.NewUserRepository(db)

	user := seedUser(t, db, 1, 0)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	_, err := likes.PlaceFreeLike(user.ID, song.ID, now)
	require.NoError(t, err)

	// Balance reaches the cap between like and unlike; the refund must not
	// push it over.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("free_like_balance", testFreeLikeCap).Error)

	require.NoError(t, likes.RemoveFreeLike(user.ID, song.ID, now))

	free, _, err := users.GetBalances(user.ID)
	require.NoError(t, err)
	assert.Equal(t, testFreeLikeCap, free)
}

func TestPlaceBoughtLike_PaysTheArtist(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)
	users := repository.NewUserRepository(db)

	user := seedUser(t, db, 0, 3)
	artist, song := seedArtistWithSong(t, db)

	like, err := likes.PlaceBoughtLike(user.ID, song.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.LikeKindBought, like.Kind)

	_, bought, err := users.GetBalances(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, bought)

	var got models.Artist
	require.NoError(t, db.First(&got, artist.ID).Error)
	assert.Equal(t, testPayoutPerLike, got.PendingEarnings)
}

func TestPlaceBoughtLike_RepeatableSameDay(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 0, 5)
	artist, song := seedArtistWithSong(t, db)
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, err := likes.PlaceBoughtLike(user.ID, song.ID, now)
		require.NoError(t, err)
	}

	var got models.Artist
	require.NoError(t, db.First(&got, artist.ID).Error)
	assert.Equal(t, 3*testPayoutPerLike, got.PendingEarnings)
}

func TestPlaceBoughtLike_InsufficientBoughtBalance(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 10, 0)
	_, song := seedArtistWithSong(t, db)

	_, err := likes.PlaceBoughtLike(user.ID, song.ID, time.Now())
	require.ErrorIs(t, err, repository.ErrInsufficientBoughtBalance)
}

func TestFreeLikesForUserToday_MapsSongToLikeID(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 5, 0)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	placed, err := likes.PlaceFreeLike(user.ID, song.ID, now)
	require.NoError(t, err)

	// Another user's like must not show up in this user's map.
	other := seedUser(t, db, 5, 0)
	_, err = likes.PlaceFreeLike(other.ID, song.ID, now)
	require.NoError(t, err)

	likeMap, err := likes.FreeLikesForUserToday(user.ID, now)
	require.NoError(t, err)
	require.Len(t, likeMap, 1)
	assert.Equal(t, placed.ID, likeMap[song.ID])
}

func TestBoughtLikesForUserToday_CountsPerSong(t *testing.T) {
	db := newTestDB(t)
	likes := repository.NewLikeRepository(db, testFreeLikeCap, testPayoutPerLike)

	user := seedUser(t, db, 0, 4)
	_, song := seedArtistWithSong(t, db)
	now := time.Now()

	for i := 0; i < 2; i++ {
		_, err := likes.PlaceBoughtLike(user.ID, song.ID, now)
		require.NoError(t, err)
	}

	counts, err := likes.BoughtLikesForUserToday(user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[song.ID])
}
