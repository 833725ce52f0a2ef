package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/product"
)

type orderResponse struct {
	*order.Order
	Total decimal.Decimal `json:"total"`
}

func newOrderResponse(o *order.Order) orderResponse {
	return orderResponse{Order: o, Total: o.Total()}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()
	ctx = events.WithMetadata(ctx, events.EnvelopeMetadata{CorrelationID: middleware.GetCorrelationID(ctx)})

	o, err := h.creator.Create(ctx, req)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newOrderResponse(o))
}

func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, verr.StatusCode(), verr.Error())
	case errors.Is(err, order.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, product.ErrStockConflict):
		writeError(w, http.StatusConflict, "stock changed while the order was placed, please retry")
	default:
		h.logger.Error("create order failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create order")
	}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderId")

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	o, err := h.orders.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("get order failed", "order_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, newOrderResponse(o))
}
