package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/customer"
)

// LineItem is one product/quantity/price triple of an order. Price is the
// catalog price at the moment the order was created.
type LineItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID        string            `json:"id"`
	Customer  customer.Customer `json:"customer"`
	Items     []LineItem        `json:"items"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Total is the sum of price * quantity over all line items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// NewOrder is what the store persists; IDs are assigned by the store.
type NewOrder struct {
	Customer customer.Customer
	Items    []LineItem
}

type RequestItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	CustomerID string        `json:"customerId"`
	Items      []RequestItem `json:"items"`
}
