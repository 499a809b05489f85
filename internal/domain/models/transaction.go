package models

import (
	"strings"
	"time"
)

// TransactionKind enumerates the supported stock movement directions.
type TransactionKind string

const (
	KindPurchase TransactionKind = "purchase"
	KindSale     TransactionKind = "sale"
)

// ParseKind normalizes free-form kind input into a TransactionKind.
func ParseKind(value string) (TransactionKind, bool) {
	switch TransactionKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindPurchase:
		return KindPurchase, true
	case KindSale:
		return KindSale, true
	default:
		return "", false
	}
}

// Transaction is a single stock movement applied to an item. Total is fixed
// at creation time and never recomputed afterwards.
type Transaction struct {
	Kind      TransactionKind `bson:"kind" json:"kind"`
	Quantity  float64         `bson:"quantity" json:"quantity"`
	UnitCost  float64         `bson:"unitCost" json:"unitCost"`
	UnitPrice float64         `bson:"unitPrice" json:"unitPrice"`
	Total     float64         `bson:"total" json:"total"`
	Date      time.Time       `bson:"date" json:"date"`
}

// QuantityBought sums purchased quantities over a transaction sequence.
func QuantityBought(txs []Transaction) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Kind == KindPurchase {
			sum += tx.Quantity
		}
	}
	return sum
}

// QuantitySold sums sold quantities over a transaction sequence.
func QuantitySold(txs []Transaction) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Kind == KindSale {
			sum += tx.Quantity
		}
	}
	return sum
}

// CurrentStock is the net quantity on hand after every movement in the sequence.
func CurrentStock(txs []Transaction) float64 {
	return QuantityBought(txs) - QuantitySold(txs)
}

// AmountBought sums purchase totals over a transaction sequence.
func AmountBought(txs []Transaction) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Kind == KindPurchase {
			sum += tx.Total
		}
	}
	return sum
}

// AmountSold sums sale totals over a transaction sequence.
func AmountSold(txs []Transaction) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Kind == KindSale {
			sum += tx.Total
		}
	}
	return sum
}

// Profit is revenue minus cost over a transaction sequence.
func Profit(txs []Transaction) float64 {
	return AmountSold(txs) - AmountBought(txs)
}

// FilterByDate returns the transactions whose date falls inside [start, end],
// both bounds inclusive, preserving storage order.
func FilterByDate(txs []Transaction, start, end time.Time) []Transaction {
	filtered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}
