package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cashvelo/internal/validation"
)

// CreditCard tracks a card's statement figures
type CreditCard struct {
	Ownership
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Pending decimal.Decimal `json:"pending"`
	Payment decimal.Decimal `json:"payment"`
}

func (c *CreditCard) Normalize(now time.Time) {
	c.Name = validation.SanitizeText(c.Name)
	c.Balance = RoundMoney(c.Balance)
	c.Pending = RoundMoney(c.Pending)
	c.Payment = RoundMoney(c.Payment)
}

// Validate accepts any combination; every field has a zero default
func (c *CreditCard) Validate() error {
	return nil
}
