package models

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed or missing caller input. Deterministic;
// retrying the same request can never succeed.
var ErrValidation = errors.New("invalid movement input")

// ErrInvalidMovement marks a sale recorded against a name with no purchase
// history. New items may only be created via a purchase.
var ErrInvalidMovement = errors.New("new items may only be created via a purchase")

// ErrDuplicateItem marks an attempt to register an item name that already
// exists case-insensitively.
var ErrDuplicateItem = errors.New("item name already exists")

// ErrStorage marks a persistence failure. A failed write never partially
// applies, so the whole operation is safe to retry.
var ErrStorage = errors.New("storage unavailable")

// InsufficientStockError rejects a sale whose quantity exceeds the stock on
// hand. Available carries the stock figure at the time of the check.
type InsufficientStockError struct {
	Name      string
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q. Available: %g", e.Name, e.Available)
}
