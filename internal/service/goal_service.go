package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cashvelo/internal/models"
	"cashvelo/internal/repository"
)

// GoalService applies contributions and withdrawals to stored goals.
//
// Each call reads the goal, applies the change in memory and writes it back
// without a version check, so concurrent calls on the same goal can lose
// updates.
type GoalService struct {
	goals *repository.GoalRepository
	now   func() time.Time
}

// NewGoalService creates a new goal service
func NewGoalService(goals *repository.GoalRepository) *GoalService {
	return &GoalService{goals: goals, now: time.Now}
}

// Contribute adds amount to the owner's goal
func (s *GoalService) Contribute(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.Goal, error) {
	if !models.RoundMoney(amount).IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	return s.apply(ctx, userID, goalID, func(g *models.Goal) error {
		return g.Contribute(amount, s.now())
	})
}

// Withdraw removes amount from the owner's goal
func (s *GoalService) Withdraw(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.Goal, error) {
	if !models.RoundMoney(amount).IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	return s.apply(ctx, userID, goalID, func(g *models.Goal) error {
		return g.Withdraw(amount)
	})
}

func (s *GoalService) apply(ctx context.Context, userID, goalID string, change func(*models.Goal) error) (*models.Goal, error) {
	goal, err := s.goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := change(goal); err != nil {
		return nil, err
	}
	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}
