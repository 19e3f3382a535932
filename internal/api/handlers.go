package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gridwatt/energymarket/internal/accounts"
	"github.com/gridwatt/energymarket/internal/journal"
	"github.com/gridwatt/energymarket/internal/market"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Market  *market.Market
	Journal *journal.Journal // optional, nil when no database is configured
	Log     *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(m *market.Market, j *journal.Journal, log *logrus.Logger) *Handler {
	return &Handler{Market: m, Journal: j, Log: log}
}

// CreateAccount creates or overwrites an account with explicit balances
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string           `json:"name"`
		Energy *int64           `json:"energy"`
		Cash   *decimal.Decimal `json:"cash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	energy := int64(0)
	if req.Energy != nil {
		energy = *req.Energy
	}
	cash := accounts.DefaultCash
	if req.Cash != nil {
		cash = *req.Cash
	}

	account, err := h.Market.CreateAccount(req.Name, energy, cash)
	if err != nil {
		http.Error(w, `{"error": "Name is required"}`, http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Account for " + account.Name + " created.",
		"account": account,
	})
}

// GetAccount retrieves account details
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	person := chi.URLParam(r, "person")

	account, err := h.Market.Account(person)
	if err != nil {
		http.Error(w, `{"error": "Account for `+person+` not found"}`, http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"account": account})
}

// SubmitOrder handles order placement and matching
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Person   string          `json:"person"`
		Type     string          `json:"type"`
		Quantity int64           `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	order, trades, err := h.Market.SubmitOrder(req.Person, req.Type, req.Quantity, req.Price)
	if err != nil {
		h.writeMarketError(w, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"person":   order.Person,
		"type":     order.Type,
		"trades":   len(trades),
	}).Info("Order submitted")

	// Journal settled trades best-effort; a write failure never fails the trade
	if h.Journal != nil {
		for _, trade := range trades {
			if err := h.Journal.Record(r.Context(), trade); err != nil {
				h.Log.WithFields(logrus.Fields{
					"trade_id": trade.ID,
					"error":    err.Error(),
				}).Warn("Failed to journal trade")
			}
		}
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Order added and matched dynamically.",
		"order":        order,
		"transactions": trades,
	})
}

// CancelOrder removes a resting order from the book
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error": "Invalid order ID"}`, http.StatusBadRequest)
		return
	}

	order, err := h.Market.CancelOrder(orderID)
	if err != nil {
		http.Error(w, `{"error": "Order not found"}`, http.StatusNotFound)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"person":   order.Person,
	}).Info("Order canceled")

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Order canceled",
		"order":   order,
	})
}

// GetOrderBook retrieves the current resting orders
func (h *Handler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_book": h.Market.OrderBook(),
	})
}

// GetTransactions retrieves the global trade log
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"transactions": h.Market.Transactions(),
	})
}

// Reset clears accounts, the order book, and the trade log
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Market.Reset()
	h.Log.Info("Marketplace reset")
	json.NewEncoder(w).Encode(map[string]string{"message": "Marketplace reset successfully."})
}

func (h *Handler) writeMarketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrInvalidOrderType):
		http.Error(w, `{"error": "Order type must be 'buy' or 'sell'"}`, http.StatusBadRequest)
	case errors.Is(err, market.ErrInvalidQuantityOrPrice):
		http.Error(w, `{"error": "Quantity and price must be greater than 0"}`, http.StatusBadRequest)
	case errors.Is(err, market.ErrInsufficientEnergy):
		http.Error(w, `{"error": "Insufficient energy to sell"}`, http.StatusBadRequest)
	default:
		http.Error(w, `{"error": "Failed to submit order"}`, http.StatusInternalServerError)
	}
}
