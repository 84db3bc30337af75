package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ropeth/songchart/internal/repository"
	"github.com/Ropeth/songchart/internal/services"
)

const testPayoutThreshold = int64(2000)

func TestRequestPayout_NotConnected(t *testing.T) {
	db := newTestDB(t)
	artists := repository.NewArtistRepository(db)
	fake := &fakePayments{transferID: "tr_1"}
	svc := services.NewPayoutService(artists, fake, testPayoutThreshold)

	// Plenty of earnings, but no connected account: the connection check
	// comes first.
	artist := seedArtist(t, db, 5000, "")

	_, _, err := svc.RequestPayout(context.Background(), artist)
	require.ErrorIs(t, err, services.ErrNotConnected)
	assert.Zero(t, fake.transferCalls)
}

func TestRequestPayout_BelowThreshold(t *testing.T) {
	db := newTestDB(t)
	artists := repository.NewArtistRepository(db)
	fake := &fakePayments{transferID: "tr_1"}
	svc := services.NewPayoutService(artists, fake, testPayoutThreshold)

	artist := seedArtist(t, db, 1500, "acct_connected")

	_, _, err := svc.RequestPayout(context.Background(), artist)
	require.ErrorIs(t, err, services.ErrBelowThreshold)
	assert.Zero(t, fake.transferCalls)

	got, err := artists.FindArtistByID(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.PendingEarnings)
}

func TestRequestPayout_Success(t *testing.T) {
	db := newTestDB(t)
	artists := repository.NewArtistRepository(db)
	fake := &fakePayments{transferID: "tr_success"}
	svc := services.NewPayoutService(artists, fake, testPayoutThreshold)

	artist := seedArtist(t, db, 2500, "acct_connected")

	transferID, amount, err := svc.RequestPayout(context.Background(), artist)
	require.NoError(t, err)
	assert.Equal(t, "tr_success", transferID)
	assert.Equal(t, int64(2500), amount)
	assert.Equal(t, "acct_connected", fake.lastAccountID)
	assert.Equal(t, int64(2500), fake.lastAmount)

	got, err := artists.FindArtistByID(artist.ID)
	require.NoError(t, err)
	assert.Zero(t, got.PendingEarnings)
	assert.Equal(t, int64(2500), got.TotalPaidOut)
	require.NotNil(t, got.LastPayoutAt)
}

func TestRequestPayout_ExactlyAtThresholdPays(t *testing.T) {
	db := newTestDB(t)
	artists := repository.NewArtistRepository(db)
	fake := &fakePayments{transferID: "tr_edge"}
	svc := services.NewPayoutService(artists, fake, testPayoutThreshold)

	artist := seedArtist(t, db, testPayoutThreshold, "acct_connected")

	_, amount, err := svc.RequestPayout(context.Background(), artist)
	require.NoError(t, err)
	assert.Equal(t, testPayoutThreshold, amount)
}

func TestRequestPayout_TransferFailureLeavesEarnings(t *testing.T) {
	db := newTestDB(t)
	artists := repository.NewArtistRepository(db)
	fake := &fakePayments{transferErr: errors.New("account cannot receive transfers")}
	svc := services.NewPayoutService(artists, fake, testPayoutThreshold)

	artist := seedArtist(t, db, 2500, "acct_connected")

	_, _, err := svc.RequestPayout(context.Background(), artist)
	require.Error(t, err)
	require.NotErrorIs(t, err, services.ErrTransferUnknown)

	got, err := artists.FindArtistByID(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.PendingEarnings, "a failed transfer must not touch the ledger")
	assert.Zero(t, got.TotalPaidOut)
}

func TestRequestPayout_TimeoutIsUnknownOutcome(t *testing.T) {
	db := newTestDB(t)
	artists := repository.NewArtistRepository(db)
	fake := &fakePayments{transferErr: context.DeadlineExceeded}
	svc := services.NewPayoutService(artists, fake, testPayoutThreshold)

	artist := seedArtist(t, db, 2500, "acct_connected")

	_, _, err := svc.RequestPayout(context.Background(), artist)
	require.ErrorIs(t, err, services.ErrTransferUnknown)

	// Unknown outcome: the ledger stays untouched so an operator can
	// reconcile against Stripe before anything is reset.
	got, err := artists.FindArtistByID(artist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.PendingEarnings)
}
