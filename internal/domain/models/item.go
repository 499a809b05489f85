package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a stock-keeping unit and its append-only movement history. Items
// are keyed case-insensitively: NameKey is the lowercased form and carries a
// unique index, Name keeps the casing of the first purchase that created it.
type Item struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameKey      string             `bson:"nameKey" json:"-"`
	Transactions []Transaction      `bson:"transactions" json:"transactions"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeName folds an item name to its case-insensitive lookup key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Derived metrics. These are recomputed from the transaction sequence on
// every call and must never be stored back onto the item, so they cannot go
// stale relative to the ledger.

func (i *Item) QuantityBought() float64 { return QuantityBought(i.Transactions) }
func (i *Item) QuantitySold() float64   { return QuantitySold(i.Transactions) }
func (i *Item) CurrentStock() float64   { return CurrentStock(i.Transactions) }
func (i *Item) AmountBought() float64   { return AmountBought(i.Transactions) }
func (i *Item) AmountSold() float64     { return AmountSold(i.Transactions) }
func (i *Item) Profit() float64         { return Profit(i.Transactions) }

// ItemView is the wire representation of an item with its derived metrics
// attached, mirroring what callers expect from list endpoints.
type ItemView struct {
	Item
	QuantityBought float64 `json:"quantityBought"`
	QuantitySold   float64 `json:"quantitySold"`
	CurrentStock   float64 `json:"currentStock"`
	AmountBought   float64 `json:"amountBought"`
	AmountSold     float64 `json:"amountSold"`
	Profit         float64 `json:"profit"`
}

// View materializes the derived metrics for serialization.
func (i *Item) View() ItemView {
	return ItemView{
		Item:           *i,
		QuantityBought: i.QuantityBought(),
		QuantitySold:   i.QuantitySold(),
		CurrentStock:   i.CurrentStock(),
		AmountBought:   i.AmountBought(),
		AmountSold:     i.AmountSold(),
		Profit:         i.Profit(),
	}
}
