package accounts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gridwatt/energymarket/internal/models"
)

func TestStore_Ensure(t *testing.T) {
	s := NewStore()

	acct := s.Ensure("alice")
	assert.Equal(t, "alice", acct.Name)
	assert.Equal(t, int64(0), acct.Energy)
	assert.True(t, acct.Cash.Equal(decimal.NewFromInt(1000)))
	assert.Empty(t, acct.Transactions)

	// Ensure is idempotent: mutations survive a second call
	acct.Energy = 50
	again := s.Ensure("alice")
	assert.Same(t, acct, again)
	assert.Equal(t, int64(50), again.Energy)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Get(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("nobody")
	assert.False(t, ok)

	s.Ensure("bob")
	acct, ok := s.Get("bob")
	assert.True(t, ok)
	assert.Equal(t, "bob", acct.Name)
}

func TestStore_SetBalances(t *testing.T) {
	s := NewStore()

	acct := s.SetBalances("charlie", 200, decimal.NewFromInt(800))
	assert.Equal(t, int64(200), acct.Energy)
	assert.True(t, acct.Cash.Equal(decimal.NewFromInt(800)))

	// Overwrites unconditionally, including negative values
	acct = s.SetBalances("charlie", -5, decimal.NewFromInt(-100))
	assert.Equal(t, int64(-5), acct.Energy)
	assert.True(t, acct.Cash.Equal(decimal.NewFromInt(-100)))
}

func TestStore_ApplyTrade(t *testing.T) {
	s := NewStore()
	s.SetBalances("seller", 70, decimal.NewFromInt(1000))
	s.SetBalances("buyer", 0, decimal.NewFromInt(1200))

	trade := models.Trade{
		ID:       "t1",
		Buyer:    "buyer",
		Seller:   "seller",
		Quantity: 20,
		Price:    decimal.RequireFromString("0.15"),
	}
	s.ApplyTrade(trade)

	buyer, _ := s.Get("buyer")
	seller, _ := s.Get("seller")

	// Buyer gains energy and pays cash
	assert.Equal(t, int64(20), buyer.Energy)
	assert.True(t, buyer.Cash.Equal(decimal.RequireFromString("1197")), "buyer cash = %s", buyer.Cash)

	// Seller receives cash; energy untouched here (debited at order placement)
	assert.Equal(t, int64(70), seller.Energy)
	assert.True(t, seller.Cash.Equal(decimal.RequireFromString("1003")), "seller cash = %s", seller.Cash)

	// Trade is cross-referenced into both histories
	assert.Len(t, buyer.Transactions, 1)
	assert.Len(t, seller.Transactions, 1)
	assert.Equal(t, "t1", buyer.Transactions[0].ID)
	assert.Equal(t, "t1", seller.Transactions[0].ID)
}

func TestStore_ApplyTrade_CreatesMissingAccounts(t *testing.T) {
	s := NewStore()

	s.ApplyTrade(models.Trade{
		Buyer:    "buyer",
		Seller:   "seller",
		Quantity: 5,
		Price:    decimal.NewFromInt(2),
	})

	buyer, ok := s.Get("buyer")
	assert.True(t, ok)
	assert.Equal(t, int64(5), buyer.Energy)
	assert.True(t, buyer.Cash.Equal(decimal.NewFromInt(990)))

	seller, ok := s.Get("seller")
	assert.True(t, ok)
	assert.True(t, seller.Cash.Equal(decimal.NewFromInt(1010)))
}

func TestStore_CreditEnergy(t *testing.T) {
	s := NewStore()
	s.SetBalances("alice", 70, decimal.NewFromInt(1000))

	s.CreditEnergy("alice", 30)

	acct, _ := s.Get("alice")
	assert.Equal(t, int64(100), acct.Energy)
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.Ensure("alice")
	s.Ensure("bob")

	s.Reset()

	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("alice")
	assert.False(t, ok)
}
