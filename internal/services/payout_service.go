package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Ropeth/songchart/internal/models"
	"github.com/Ropeth/songchart/internal/repository"
)

var (
	ErrNotConnected   = errors.New("payout account not connected")
	ErrBelowThreshold = errors.New("pending earnings below payout threshold")

	// ErrTransferUnknown means the transfer call timed out: the money may or
	// may not have moved. It must never be retried automatically.
	ErrTransferUnknown = errors.New("transfer outcome unknown, manual verification required")
)

// PayoutService checks the withdrawal preconditions, issues the external
// transfer, and commits the earnings reset only after the transfer succeeds.
type PayoutService struct {
	artistRepo      repository.ArtistRepository
	payments        PaymentClient
	threshold       int64
	transferTimeout time.Duration
}

func NewPayoutService(artistRepo repository.ArtistRepository, payments PaymentClient, threshold int64) *PayoutService {
	return &PayoutService{
		artistRepo:      artistRepo,
		payments:        payments,
		threshold:       threshold,
		transferTimeout: 30 * time.Second,
	}
}

// RequestPayout pays out an artist's full pending balance. Precondition order
// follows the product flow: connection first, then threshold.
func (s *PayoutService) RequestPayout(ctx context.Context, artist *models.Artist) (transferID string, amount int64, err error) {
	if artist.PayoutAccountID == "" {
		return "", 0, ErrNotConnected
	}
	amount = artist.PendingEarnings
	if amount < s.threshold {
		return "", 0, ErrBelowThreshold
	}

	transferCtx, cancel := context.WithTimeout(ctx, s.transferTimeout)
	defer cancel()

	description := fmt.Sprintf("Songchart payout for %s", artist.Name)
	transferID, err = s.payments.Transfer(transferCtx, artist.PayoutAccountID, amount, description)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(transferCtx.Err(), context.DeadlineExceeded) {
			log.Printf("[Payout] ALERT: transfer for artist %d (%d pence) timed out; outcome unknown, do not retry", artist.ID, amount)
			return "", 0, ErrTransferUnknown
		}
		return "", 0, fmt.Errorf("transfer failed: %w", err)
	}

	if err := s.artistRepo.ResetEarnings(artist.ID, amount, time.Now()); err != nil {
		// The money has moved but the ledger still shows it pending. This
		// needs an operator; retrying the payout would pay twice.
		log.Printf("[Payout] ALERT: transfer %s succeeded but earnings reset failed for artist %d: %v", transferID, artist.ID, err)
		return transferID, amount, fmt.Errorf("transfer %s completed but earnings reset failed: %w", transferID, err)
	}

	return transferID, amount, nil
}
