package order

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidRequest wraps shape problems found before any lookup is made.
var ErrInvalidRequest = errors.New("invalid order request")

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrNoProductsMatched = errors.New("no products matched")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Kind classifies a business-rule failure of order creation.
type Kind int

const (
	CustomerNotFound Kind = iota + 1
	NoProductsMatched
	ProductNotFound
	InsufficientStock
)

func (k Kind) String() string {
	switch k {
	case CustomerNotFound:
		return "customer_not_found"
	case NoProductsMatched:
		return "no_products_matched"
	case ProductNotFound:
		return "product_not_found"
	case InsufficientStock:
		return "insufficient_stock"
	default:
		return "unknown"
	}
}

// ValidationError is returned when a request breaks a business rule.
// ProductID and Quantity refer to the first offending item in request order;
// Quantity is the requested amount, not the available one.
type ValidationError struct {
	Kind       Kind
	CustomerID string
	ProductID  string
	Quantity   int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case CustomerNotFound:
		return fmt.Sprintf("invalid customer id %s", e.CustomerID)
	case NoProductsMatched:
		return "could not find any product with the given ids"
	case ProductNotFound:
		return fmt.Sprintf("could not find product %s", e.ProductID)
	case InsufficientStock:
		return fmt.Sprintf("the quantity %d is not available for %s", e.Quantity, e.ProductID)
	default:
		return "order validation failed"
	}
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case CustomerNotFound:
		return ErrCustomerNotFound
	case NoProductsMatched:
		return ErrNoProductsMatched
	case ProductNotFound:
		return ErrProductNotFound
	case InsufficientStock:
		return ErrInsufficientStock
	default:
		return nil
	}
}

// StatusCode is the HTTP status for every validation failure.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}
