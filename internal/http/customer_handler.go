package httpapi

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/customer"
)

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "email is invalid")
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	c, err := h.customers.Create(ctx, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, customer.ErrEmailTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("create customer failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerId")

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	c, err := h.customers.FindByID(ctx, id)
	if err != nil {
		h.logger.Error("get customer failed", "customer_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load customer")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	writeJSON(w, http.StatusOK, c)
}
