package model

import (
	"encoding/json"
	"strconv"

	"stock-cli/internal/calendar"

	"github.com/shopspring/decimal"
)

// Kind names a remote resource.
type Kind string

const (
	KindItem Kind = "item"
	KindLot  Kind = "lot"
)

// Item is a stock product.
type Item struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (i Item) EntityID() int64 { return i.ID }
func (i Item) Label() string   { return i.Name }

// Lot is a batch of one item.
type Lot struct {
	ID         int64         `json:"id"`
	Number     string        `json:"number"`
	Quantity   int           `json:"quantity"`
	ExpiryDate calendar.Date `json:"expiry_date"`
	ItemID     int64         `json:"item_id"`
}

func (l Lot) EntityID() int64 { return l.ID }
func (l Lot) Label() string   { return l.Number }

// ItemPayload is the body of POST /items and PUT /items/{id}.
type ItemPayload struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// LotCreatePayload is the body of POST /lots.
type LotCreatePayload struct {
	Number     string        `json:"number"`
	Quantity   int           `json:"quantity"`
	ExpiryDate calendar.Date `json:"expiry_date"`
	ItemID     int64         `json:"item_id"`
}

// LotUpdatePayload is the body of PUT /lots/{id}. The owning item is not sent.
type LotUpdatePayload struct {
	Number     string        `json:"number"`
	Quantity   int           `json:"quantity"`
	ExpiryDate calendar.Date `json:"expiry_date"`
}

// FormatPrice renders a price the way the stock table shows it.
func FormatPrice(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// FormatQuantity renders a lot quantity.
func FormatQuantity(q int) string {
	return strconv.Itoa(q)
}
