package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/gridwatt/energymarket/internal/models"
)

// DefaultCash is the starting cash balance for implicitly created accounts.
var DefaultCash = decimal.NewFromInt(1000)

// Store holds participant accounts and their settled trade histories.
// It is not safe for concurrent use on its own: the market serializes
// all access behind its own lock.
type Store struct {
	accounts map[string]*models.Account
}

// NewStore creates an empty account store
func NewStore() *Store {
	return &Store{accounts: make(map[string]*models.Account)}
}

// Ensure returns the account for name, creating it with default balances
// (energy 0, cash 1000.0) if it does not exist yet.
func (s *Store) Ensure(name string) *models.Account {
	acct, ok := s.accounts[name]
	if !ok {
		acct = &models.Account{
			Name:   name,
			Energy: 0,
			Cash:   DefaultCash,
		}
		s.accounts[name] = acct
	}
	return acct
}

// Get returns the account for name, or false if it was never created
func (s *Store) Get(name string) (*models.Account, bool) {
	acct, ok := s.accounts[name]
	return acct, ok
}

// SetBalances overwrites an account's stated balances unconditionally,
// creating the account first if needed.
func (s *Store) SetBalances(name string, energy int64, cash decimal.Decimal) *models.Account {
	acct := s.Ensure(name)
	acct.Energy = energy
	acct.Cash = cash
	return acct
}

// ApplyTrade settles a trade: the buyer gains energy and pays cash, the
// seller receives cash. The seller's energy is not touched here; it was
// debited when the sell order was placed and the fill consumes that
// reservation. The trade is appended to both participants' histories.
func (s *Store) ApplyTrade(trade models.Trade) {
	buyer := s.Ensure(trade.Buyer)
	seller := s.Ensure(trade.Seller)

	notional := trade.Price.Mul(decimal.NewFromInt(trade.Quantity))
	buyer.Energy += trade.Quantity
	buyer.Cash = buyer.Cash.Sub(notional)
	seller.Cash = seller.Cash.Add(notional)

	buyer.Transactions = append(buyer.Transactions, trade)
	seller.Transactions = append(seller.Transactions, trade)
}

// CreditEnergy returns reserved energy to an account (order cancellation)
func (s *Store) CreditEnergy(name string, quantity int64) {
	s.Ensure(name).Energy += quantity
}

// Reset removes every account
func (s *Store) Reset() {
	s.accounts = make(map[string]*models.Account)
}

// Len returns the number of accounts in the store
func (s *Store) Len() int {
	return len(s.accounts)
}
