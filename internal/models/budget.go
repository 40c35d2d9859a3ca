package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cashvelo/internal/validation"
)

// Budget types
const (
	BudgetRecurring = "recurring"
	BudgetVariable  = "variable"
)

// Budget is a spending envelope
type Budget struct {
	Ownership
	Name  string          `json:"name"`
	Limit decimal.Decimal `json:"limit"`
	Type  string          `json:"type"`
}

func (b *Budget) Normalize(now time.Time) {
	b.Name = validation.SanitizeText(b.Name)
	b.Type = validation.SanitizeText(b.Type)
	b.Limit = RoundMoney(b.Limit)
}

func (b *Budget) Validate() error {
	if b.Name == "" || b.Type == "" {
		return validation.New("name", "Name and type are required")
	}
	if !validation.OneOf(b.Type, BudgetRecurring, BudgetVariable) {
		return validation.New("type", "Type must be recurring or variable")
	}
	if b.Limit.IsNegative() {
		return validation.New("limit", "Limit cannot be negative")
	}
	return nil
}
