package models

import "time"

// Movement is a validated request to record one stock movement. Date is
// optional; the ledger stamps the current time when it is zero.
type Movement struct {
	Name      string
	Kind      TransactionKind
	Quantity  float64
	UnitCost  float64
	UnitPrice float64
	Date      time.Time
}

// Transaction builds the immutable ledger entry for the movement, zeroing
// the unit figure that does not apply to its kind and fixing Total.
func (m Movement) Transaction(now time.Time) Transaction {
	date := m.Date
	if date.IsZero() {
		date = now
	}

	tx := Transaction{
		Kind:     m.Kind,
		Quantity: m.Quantity,
		Date:     date,
	}

	switch m.Kind {
	case KindPurchase:
		tx.UnitCost = m.UnitCost
		tx.Total = m.UnitCost * m.Quantity
	case KindSale:
		tx.UnitPrice = m.UnitPrice
		tx.Total = m.UnitPrice * m.Quantity
	}

	return tx
}
