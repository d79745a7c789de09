package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizforge-backend/internal/models"
)

// ProfileStore is the persisted usage-counter surface the evaluator needs.
// repository.UserRepo satisfies it; tests substitute fakes.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResetDailyCount(ctx context.Context, userID uuid.UUID, resetDate time.Time) error
	IncrementGenerationCounts(ctx context.Context, userID uuid.UUID) error
}

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type PlanLimitService struct {
	store     ProfileStore
	freeLimit int
	now       func() time.Time
}

func NewPlanLimitService(store ProfileStore, freeLimit int) *PlanLimitService {
	if freeLimit <= 0 {
		freeLimit = 1
	}
	return &PlanLimitService{
		store:     store,
		freeLimit: freeLimit,
		now:       time.Now,
	}
}

// CanGenerate evaluates whether the user may start another generation today.
// The daily counter resets lazily on the first evaluation after a calendar-day
// boundary, never on a timer. The read-modify-write is not guarded against
// concurrent requests for the same user; two simultaneous evaluations can both
// see the old count (accepted lost-update race).
func (s *PlanLimitService) CanGenerate(ctx context.Context, userID uuid.UUID) (Decision, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Decision{}, &NotFoundError{Message: "User not found"}
		}
		return Decision{}, fmt.Errorf("failed to load usage counters: %w", err)
	}

	if user.Plan == "paid" {
		return Decision{Allowed: true}, nil
	}

	today := s.today()
	count := user.DailyGenerationCount
	if !sameCalendarDay(user.LastResetDate, today) {
		if err := s.store.ResetDailyCount(ctx, userID, today); err != nil {
			return Decision{}, fmt.Errorf("failed to reset daily counter: %w", err)
		}
		count = 0
	}

	if count >= s.freeLimit {
		return Decision{Allowed: false, Reason: "Daily free generation limit reached. Upgrade for unlimited generations."}, nil
	}

	return Decision{Allowed: true}, nil
}

// RecordGeneration increments the daily and lifetime counters. Callers invoke
// it after a generation succeeds.
func (s *PlanLimitService) RecordGeneration(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.IncrementGenerationCounts(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "User not found"}
		}
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

func (s *PlanLimitService) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameCalendarDay(a, b time.Time) bool {
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}
