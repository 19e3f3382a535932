package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a participant's energy and cash balances
type Account struct {
	Name         string          `json:"name"`
	Energy       int64           `json:"energy"` // Free (unreserved) energy credits
	Cash         decimal.Decimal `json:"cash"`
	Transactions []Trade         `json:"transactions"` // Trades this account took part in, append-only
}

// Order represents a resting buy or sell order
type Order struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"` // "buy" or "sell"
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Person    string          `json:"person"`
	CreatedAt time.Time       `json:"created_at"` // Used for time priority on equal prices
}

// Trade represents an executed trade
type Trade struct {
	ID         string          `json:"id"`
	Buyer      string          `json:"buyer"`
	Seller     string          `json:"seller"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}
