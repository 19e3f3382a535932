package market

import "errors"

// Market errors. Validation failures are rejected before any state
// mutation, so the caller may always retry with corrected input.
var (
	ErrInvalidOrderType       = errors.New("order type must be 'buy' or 'sell'")
	ErrInvalidQuantityOrPrice = errors.New("quantity and price must be greater than 0")
	ErrInsufficientEnergy     = errors.New("insufficient energy to sell")
	ErrAccountNotFound        = errors.New("account not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrNameRequired           = errors.New("name is required")
)
