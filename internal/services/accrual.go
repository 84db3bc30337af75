package services

import (
	"log"

	"github.com/Ropeth/songchart/internal/repository"
)

// AccrualPolicy converts listening time into free likes: one grant per
// completed window (60s by default), with a small tolerance so that drifting
// client heartbeats around a window boundary cost or gain at most one grant.
// Grants are derived from the absolute reported duration, never from counting
// timer ticks, so the error can never accumulate.
type AccrualPolicy struct {
	WindowSeconds    int
	ToleranceSeconds int
}

// GrantsDue returns how many new free likes a play has earned, given the total
// playback duration and the number of windows already credited.
func (p AccrualPolicy) GrantsDue(durationSeconds, creditedMinutes int) int {
	if p.WindowSeconds <= 0 {
		return 0
	}
	completed := (durationSeconds + p.ToleranceSeconds) / p.WindowSeconds
	due := completed - creditedMinutes
	if due < 0 {
		return 0
	}
	return due
}

// AccrualService applies the policy to play heartbeats.
type AccrualService struct {
	playRepo    repository.PlayRepository
	userRepo    repository.UserRepository
	policy      AccrualPolicy
	freeLikeCap int
}

func NewAccrualService(playRepo repository.PlayRepository, userRepo repository.UserRepository, policy AccrualPolicy, freeLikeCap int) *AccrualService {
	return &AccrualService{
		playRepo:    playRepo,
		userRepo:    userRepo,
		policy:      policy,
		freeLikeCap: freeLikeCap,
	}
}

// RecordProgress updates a play with the client's reported duration and grants
// any free likes that became due. The window claim on the play record is
// optimistic, so two heartbeats for the same play (two tabs) cannot both grant
// the same window; the loser simply grants nothing this round.
func (s *AccrualService) RecordProgress(userID, playID uint, durationSeconds int) (granted int, err error) {
	play, err := s.playRepo.GetPlayByID(playID)
	if err != nil {
		return 0, err
	}
	if play.UserID != userID {
		return 0, repository.ErrPlayNotFound
	}

	// Heartbeats report a monotonic position; a stale or reordered report
	// never moves the play backwards.
	if durationSeconds < play.DurationSeconds {
		durationSeconds = play.DurationSeconds
	}

	due := s.policy.GrantsDue(durationSeconds, play.CreditedMinutes)
	claimed, err := s.playRepo.AdvancePlay(playID, durationSeconds, play.CreditedMinutes, play.CreditedMinutes+due)
	if err != nil {
		return 0, err
	}
	if !claimed || due == 0 {
		return 0, nil
	}

	granted, err = s.userRepo.CreditFreeLikes(userID, due, s.freeLikeCap)
	if err != nil {
		// Windows stay claimed so retries cannot double-grant; the missed
		// credit is within the policy's accepted error.
		log.Printf("[Accrual] failed to credit %d free likes for user %d: %v", due, userID, err)
		return granted, err
	}
	return granted, nil
}
