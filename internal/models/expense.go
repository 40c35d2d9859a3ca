package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cashvelo/internal/validation"
)

// Expense is a single spending entry
type Expense struct {
	Ownership
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     Date            `json:"date"`
	Note     string          `json:"note"`
}

func (e *Expense) Normalize(now time.Time) {
	e.Category = validation.SanitizeText(e.Category)
	e.Note = validation.SanitizeText(e.Note)
	e.Amount = RoundMoney(e.Amount)
}

func (e *Expense) Validate() error {
	if e.Amount.IsZero() || e.Date.IsZero() {
		return validation.New("amount", "Amount and date are required")
	}
	return nil
}
