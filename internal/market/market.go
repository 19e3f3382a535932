package market

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridwatt/energymarket/internal/accounts"
	"github.com/gridwatt/energymarket/internal/models"
)

// Order types accepted by SubmitOrder
const (
	Buy  = "buy"
	Sell = "sell"
)

// Market owns the resting order book, the global trade log, and the
// account store. A single mutex serializes every mutation: the matching
// pass reads and writes the book and multiple accounts atomically, so
// partial interleaving would corrupt balances.
type Market struct {
	mu     sync.Mutex
	store  *accounts.Store
	book   []models.Order
	trades []models.Trade
	lastID int64
}

// New creates a market backed by the given account store
func New(store *accounts.Store) *Market {
	return &Market{store: store}
}

// SubmitOrder validates and places an order, runs the matching pass, and
// returns the resting order as created plus the trades this submission
// produced. A sell order debits the seller's free energy immediately:
// the quantity is reserved against the resting order and either consumed
// by fills or refunded by cancellation. Settlement never debits the
// seller's energy a second time.
func (m *Market) SubmitOrder(person, orderType string, quantity int64, price decimal.Decimal) (models.Order, []models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if orderType != Buy && orderType != Sell {
		return models.Order{}, nil, ErrInvalidOrderType
	}
	if quantity <= 0 || !price.IsPositive() {
		return models.Order{}, nil, ErrInvalidQuantityOrPrice
	}
	if orderType == Sell {
		acct, ok := m.store.Get(person)
		if !ok || acct.Energy < quantity {
			return models.Order{}, nil, ErrInsufficientEnergy
		}
		acct.Energy -= quantity
	}

	m.lastID++
	order := models.Order{
		ID:        m.lastID,
		Type:      orderType,
		Quantity:  quantity,
		Price:     price,
		Person:    person,
		CreatedAt: time.Now(),
	}
	m.book = append(m.book, order)

	trades := m.match()

	// Report the remaining quantity after matching, zero if fully filled
	order.Quantity = 0
	for _, o := range m.book {
		if o.ID == order.ID {
			order.Quantity = o.Quantity
		}
	}
	return order, trades, nil
}

// match runs one matching pass over the whole book and returns the
// trades it produced. The book is small, so a full re-sort per pass is
// fine; re-matching is idempotent over already-matched quantity.
func (m *Market) match() []models.Trade {
	var buys, sells []*models.Order
	for i := range m.book {
		if m.book[i].Type == Buy {
			buys = append(buys, &m.book[i])
		} else {
			sells = append(sells, &m.book[i])
		}
	}

	// Highest bid first; lowest ask first. Equal prices rank by order
	// id ascending, which is submission order, so time priority.
	sort.Slice(buys, func(i, j int) bool {
		if buys[i].Price.Equal(buys[j].Price) {
			return buys[i].ID < buys[j].ID
		}
		return buys[i].Price.GreaterThan(buys[j].Price)
	})
	sort.Slice(sells, func(i, j int) bool {
		if sells[i].Price.Equal(sells[j].Price) {
			return sells[i].ID < sells[j].ID
		}
		return sells[i].Price.LessThan(sells[j].Price)
	})

	var trades []models.Trade
	i, j := 0, 0
	for i < len(buys) && j < len(sells) {
		buy, sell := buys[i], sells[j]
		if buy.Price.LessThan(sell.Price) {
			break // no further matches possible
		}

		tradeQuantity := buy.Quantity
		if sell.Quantity < tradeQuantity {
			tradeQuantity = sell.Quantity
		}

		trade := models.Trade{
			ID:         uuid.New().String(),
			Buyer:      buy.Person,
			Seller:     sell.Person,
			Quantity:   tradeQuantity,
			Price:      sell.Price, // the resting ask sets the execution price
			ExecutedAt: time.Now(),
		}
		m.store.ApplyTrade(trade)
		trades = append(trades, trade)

		buy.Quantity -= tradeQuantity
		sell.Quantity -= tradeQuantity
		if buy.Quantity == 0 {
			i++
		}
		if sell.Quantity == 0 {
			j++
		}
	}

	// Drop fully filled orders, keep partial fills resident
	remaining := m.book[:0]
	for _, order := range m.book {
		if order.Quantity > 0 {
			remaining = append(remaining, order)
		}
	}
	m.book = remaining

	m.trades = append(m.trades, trades...)
	return trades
}

// CancelOrder removes a resting order from the book. Cancelling a sell
// refunds the remaining reserved energy to its owner.
func (m *Market) CancelOrder(id int64) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, order := range m.book {
		if order.ID != id {
			continue
		}
		if order.Type == Sell {
			m.store.CreditEnergy(order.Person, order.Quantity)
		}
		m.book = append(m.book[:i], m.book[i+1:]...)
		return order, nil
	}
	return models.Order{}, ErrOrderNotFound
}

// CreateAccount creates or overwrites an account with explicit balances
func (m *Market) CreateAccount(name string, energy int64, cash decimal.Decimal) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return models.Account{}, ErrNameRequired
	}
	return copyAccount(m.store.SetBalances(name, energy, cash)), nil
}

// Account returns a snapshot of the named account
func (m *Market) Account(name string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.store.Get(name)
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return copyAccount(acct), nil
}

// OrderBook returns a snapshot of the resting orders
func (m *Market) OrderBook() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	book := make([]models.Order, len(m.book))
	copy(book, m.book)
	return book
}

// Transactions returns the global trade log in chronological order
func (m *Market) Transactions() []models.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()

	trades := make([]models.Trade, len(m.trades))
	copy(trades, m.trades)
	return trades
}

// Reset clears accounts, the order book, and the trade log together.
// Order ids restart from 1.
func (m *Market) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Reset()
	m.book = nil
	m.trades = nil
	m.lastID = 0
}

func copyAccount(acct *models.Account) models.Account {
	out := *acct
	out.Transactions = make([]models.Trade, len(acct.Transactions))
	copy(out.Transactions, acct.Transactions)
	return out
}
