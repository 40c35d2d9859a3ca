package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Clients send and expect plain JSON numbers for money
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the scale of every stored amount
const MoneyPlaces = 2

// RoundMoney rounds d to the stored scale
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Ownership is the identity block shared by every user-owned record
type Ownership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Own exposes the ownership block to generic stores and handlers
func (o *Ownership) Own() *Ownership {
	return o
}

// Owned is implemented by every record kept in an owner-scoped store
type Owned interface {
	Own() *Ownership
}

// Resource is an owned record that can normalise and validate its own fields
type Resource interface {
	Owned
	// Normalize applies defaults and cleans free text before validation
	Normalize(now time.Time)
	// Validate reports the first invalid or missing field
	Validate() error
}
