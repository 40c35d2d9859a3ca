package models

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"cashvelo/internal/validation"
)

// Goal categories
const (
	GoalVacation  = "vacation"
	GoalDebt      = "debt"
	GoalEmergency = "emergency"
	GoalPurchase  = "purchase"
	GoalEducation = "education"
	GoalHome      = "home"
	GoalOther     = "other"
)

const (
	DefaultGoalIcon  = "🎯"
	DefaultGoalColor = "#3b82f6"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrInsufficientFunds = errors.New("withdrawal amount exceeds current savings")
)

var goalCategories = []string{
	GoalVacation, GoalDebt, GoalEmergency, GoalPurchase, GoalEducation, GoalHome, GoalOther,
}

var hundred = decimal.NewFromInt(100)

// Goal is a savings target. CurrentAmount, Completed and CompletedAt change
// only through Contribute and Withdraw.
type Goal struct {
	Ownership
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    Date            `json:"targetDate"`
	Category      string          `json:"category"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	Completed     bool            `json:"completed"`
	CompletedAt   *time.Time      `json:"completedAt"`
}

func (g *Goal) Normalize(now time.Time) {
	g.Name = validation.SanitizeText(g.Name)
	g.Description = validation.SanitizeText(g.Description)
	g.Category = validation.SanitizeText(g.Category)
	g.TargetAmount = RoundMoney(g.TargetAmount)
	g.CurrentAmount = RoundMoney(g.CurrentAmount)
	if g.Category == "" {
		g.Category = GoalOther
	}
	if g.Icon == "" {
		g.Icon = DefaultGoalIcon
	}
	if g.Color == "" {
		g.Color = DefaultGoalColor
	}
}

func (g *Goal) Validate() error {
	if g.Name == "" || g.TargetAmount.IsZero() || g.TargetDate.IsZero() {
		return validation.New("name", "Name, target amount, and target date are required")
	}
	if !g.TargetAmount.IsPositive() {
		return validation.New("targetAmount", "Target amount must be greater than 0")
	}
	if !validation.OneOf(g.Category, goalCategories...) {
		return validation.New("category", "Invalid goal category")
	}
	return nil
}

// Contribute adds amount to the savings and marks the goal completed the
// first time the target is reached. Amounts are rounded to the stored scale.
func (g *Goal) Contribute(amount decimal.Decimal, now time.Time) error {
	amount = RoundMoney(amount)
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) && !g.Completed {
		completedAt := now.UTC()
		g.Completed = true
		g.CompletedAt = &completedAt
	}
	return nil
}

// Withdraw removes amount from the savings, reopening a completed goal that
// drops below its target. The goal is left untouched on error.
func (g *Goal) Withdraw(amount decimal.Decimal) error {
	amount = RoundMoney(amount)
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(g.CurrentAmount) {
		return ErrInsufficientFunds
	}
	g.CurrentAmount = g.CurrentAmount.Sub(amount)
	if g.CurrentAmount.LessThan(g.TargetAmount) && g.Completed {
		g.Completed = false
		g.CompletedAt = nil
	}
	return nil
}

// Progress is the saved share of the target in percent, capped at 100
func (g *Goal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	return decimal.Min(hundred, g.CurrentAmount.Div(g.TargetAmount).Mul(hundred))
}

// Remaining is what is still missing to reach the target, never negative
func (g *Goal) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, g.TargetAmount.Sub(g.CurrentAmount))
}

// DaysRemaining counts whole days (rounded up) until the target date;
// negative once the date has passed
func (g *Goal) DaysRemaining(now time.Time) int {
	days := g.TargetDate.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// MarshalJSON adds the derived progress fields, computed against the
// current clock
func (g Goal) MarshalJSON() ([]byte, error) {
	type goalFields Goal
	return json.Marshal(struct {
		goalFields
		Progress      decimal.Decimal `json:"progress"`
		Remaining     decimal.Decimal `json:"remaining"`
		DaysRemaining int             `json:"daysRemaining"`
	}{
		goalFields:    goalFields(g),
		Progress:      g.Progress().Round(2),
		Remaining:     g.Remaining(),
		DaysRemaining: g.DaysRemaining(time.Now()),
	})
}

// ResetProgress clears the fields only Contribute and Withdraw may set
func (g *Goal) ResetProgress() {
	g.CurrentAmount = decimal.Zero
	g.Completed = false
	g.CompletedAt = nil
}

// KeepProgress copies the savings state of existing onto g
func (g *Goal) KeepProgress(existing *Goal) {
	g.CurrentAmount = existing.CurrentAmount
	g.Completed = existing.Completed
	g.CompletedAt = existing.CompletedAt
}
