package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gridwatt/energymarket/internal/accounts"
	"github.com/gridwatt/energymarket/internal/api"
	"github.com/gridwatt/energymarket/internal/journal"
	"github.com/gridwatt/energymarket/internal/market"
	"github.com/gridwatt/energymarket/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type WSClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

var (
	clients   = make(map[*WSClient]bool)
	clientsMu sync.RWMutex
)

func broadcastOrderBook(m *market.Market, log *logrus.Logger) {
	snapshot := struct {
		OrderBook []models.Order `json:"order_book"`
	}{
		OrderBook: m.OrderBook(),
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.WithField("error", err.Error()).Error("Failed to marshal order book")
		return
	}

	clientsMu.RLock()
	for client := range clients {
		client.mu.Lock()
		err := client.conn.WriteMessage(websocket.TextMessage, data)
		client.mu.Unlock()
		if err != nil {
			log.WithField("error", err.Error()).Error("Failed to send message")
			clientsMu.RUnlock()
			clientsMu.Lock()
			delete(clients, client)
			clientsMu.Unlock()
			clientsMu.RLock()
		}
	}
	clientsMu.RUnlock()
}

func handleWebSocket(m *market.Market, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithField("error", err.Error()).Error("Failed to upgrade connection")
			return
		}

		client := &WSClient{conn: conn}
		clientsMu.Lock()
		clients[client] = true
		clientsMu.Unlock()

		// Send initial order book
		broadcastOrderBook(m, log)

		// Keep connection alive and handle disconnection
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				clientsMu.Lock()
				delete(clients, client)
				clientsMu.Unlock()
				break
			}
		}
	}
}

// Main entry point: sets up the market, optional trade journal, and HTTP server
func main() {
	ctx := context.Background()

	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	// Initialize the market (account store, order book, matching engine)
	m := market.New(accounts.NewStore())

	// Optional best-effort trade journal
	var j *journal.Journal
	if connString := os.Getenv("DATABASE_URL"); connString != "" {
		var err error
		j, err = journal.Open(ctx, connString)
		if err != nil {
			log.WithField("error", err.Error()).Fatal("Failed to open trade journal")
		}
		defer j.Close()
		log.Info("Trade journal enabled")
	}

	// Initialize API handlers
	handler := api.NewHandler(m, j, log)

	// Set up HTTP router
	r := chi.NewRouter()

	// Enable CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WebSocket endpoint
	r.Get("/ws", handleWebSocket(m, log))

	// Marketplace endpoints
	r.Post("/api/accounts", handler.CreateAccount)
	r.Get("/api/accounts/{person}", handler.GetAccount)
	r.Post("/api/orders", handler.SubmitOrder)
	r.Delete("/api/orders/{id}", handler.CancelOrder)
	r.Get("/api/order-book", handler.GetOrderBook)
	r.Get("/api/transactions", handler.GetTransactions)
	r.Post("/api/reset", handler.Reset)

	// Start periodic order book broadcast
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		for range ticker.C {
			broadcastOrderBook(m, log)
		}
	}()

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.WithField("addr", addr).Info("Starting server")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.WithField("error", err.Error()).Fatal("Server failed")
	}
}
