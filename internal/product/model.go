package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// StockLevel is the quantity a product should be set to. When Expected is
// set the update only applies while the stored quantity still equals it; a
// nil Expected overwrites unconditionally.
type StockLevel struct {
	ProductID string
	Quantity  int
	Expected  *int
}
