package models

import (
	"time"

	"github.com/shopspring/decimal"

	"cashvelo/internal/validation"
)

// Income is a single earnings entry
type Income struct {
	Ownership
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
	Date   Date            `json:"date"`
	Note   string          `json:"note"`
}

// Normalize dates undated income to now
func (i *Income) Normalize(now time.Time) {
	i.Type = validation.SanitizeText(i.Type)
	i.Source = validation.SanitizeText(i.Source)
	i.Note = validation.SanitizeText(i.Note)
	i.Amount = RoundMoney(i.Amount)
	if i.Date.IsZero() {
		i.Date = NewDate(now)
	}
}

func (i *Income) Validate() error {
	if i.Type == "" || i.Amount.IsZero() {
		return validation.New("type", "Type and amount are required")
	}
	return nil
}
