package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/product"
)

const maxBodyBytes = 1 << 20

type CustomerStore interface {
	Create(ctx context.Context, name, email string) (*customer.Customer, error)
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
}

type ProductStore interface {
	Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (*product.Product, error)
	Get(ctx context.Context, id string) (*product.Product, error)
}

type OrderCreator interface {
	Create(ctx context.Context, req order.CreateRequest) (*order.Order, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, orderID string) (*order.Order, error)
}

type Handler struct {
	customers CustomerStore
	products  ProductStore
	creator   OrderCreator
	orders    OrderReader
	logger    *slog.Logger
	timeout   time.Duration
}

func NewHandler(customers CustomerStore, products ProductStore, creator OrderCreator, orders OrderReader, logger *slog.Logger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Handler{
		customers: customers,
		products:  products,
		creator:   creator,
		orders:    orders,
		logger:    logger,
		timeout:   timeout,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "ordering-service"})
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
