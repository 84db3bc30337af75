package services_test

import (
	"context"
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

func seedFan(t *testing.T, db *gorm.DB, freeBalance, boughtBalance int) *models.User {
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

func seedArtist(t *testing.T, db *gorm.DB, pendingEarnings int64, accountID string) *models.Artist {
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
		UserID:          owner.ID,
		Name:            "The Night Owls",
		PayoutAccountID: accountID,
		PayoutsEnabled:  accountID != "",
		PendingEarnings: pendingEarnings,
	}
	require.NoError(t, db.Create(artist).Error)
	return artist
}

// fakePayments implements PaymentClient for tests. Each method returns the
// canned value or error it was configured with.
type fakePayments struct {
	transferID    string
	transferErr   error
	transferCalls int
	lastAccountID string
	lastAmount    int64
}

func (f *fakePayments) CreateLikeBundleIntent(ctx context.Context, userID uint) (string, error) {
	return "pi_secret_test", nil
}

func (f *fakePayments) CreateConnectAccount(ctx context.Context, userID uint, email string) (string, error) {
	return "acct_test", nil
}

func (f *fakePayments) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	return "https://connect.example.com/onboard/" + accountID, nil
}

func (f *fakePayments) Transfer(ctx context.Context, accountID string, amountPence int64, description string) (string, error) {
	f.transferCalls++
	f.lastAccountID = accountID
	f.lastAmount = amountPence
	if f.transferErr != nil {
		return "", f.transferErr
	}
	return f.transferID, nil
}
