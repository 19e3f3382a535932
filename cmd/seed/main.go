package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

// Seed a running server with the demo accounts and orders
func main() {
	baseURL := os.Getenv("MARKET_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// First check whether the book already has orders
	resp, err := http.Get(baseURL + "/api/order-book")
	if err != nil {
		log.Fatalf("Failed to reach server: %v", err)
	}
	var book struct {
		OrderBook []json.RawMessage `json:"order_book"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		log.Fatalf("Failed to decode order book: %v", err)
	}
	resp.Body.Close()

	if len(book.OrderBook) > 0 {
		fmt.Printf("Order book already has %d orders. No need to seed.\n", len(book.OrderBook))
		os.Exit(0)
	}

	accounts := []map[string]interface{}{
		{"name": "Alice", "energy": 100, "cash": 1000},
		{"name": "Bob", "energy": 50, "cash": 1200},
		{"name": "Charlie", "energy": 200, "cash": 800},
		{"name": "Diana", "energy": 150, "cash": 1100},
	}
	orders := []map[string]interface{}{
		{"person": "Alice", "type": "sell", "quantity": 30, "price": 0.15},
		{"person": "Charlie", "type": "sell", "quantity": 50, "price": 0.20},
		{"person": "Bob", "type": "buy", "quantity": 20, "price": 0.18},
		{"person": "Diana", "type": "buy", "quantity": 40, "price": 0.22},
	}

	for _, account := range accounts {
		post(baseURL+"/api/accounts", account)
	}
	for _, order := range orders {
		post(baseURL+"/api/orders", order)
	}

	fmt.Println("Seeded 4 accounts and 4 orders.")
}

func post(url string, body map[string]interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Fatalf("Failed to POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Fatalf("POST %s returned status %d", url, resp.StatusCode)
	}
}
