package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/farmgateapp/farmgate/internal/checkout"
	"github.com/farmgateapp/farmgate/internal/db"
	"github.com/farmgateapp/farmgate/internal/models"
	"github.com/farmgateapp/farmgate/internal/payment"
	"github.com/farmgateapp/farmgate/internal/session"
)

type checkoutRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      string `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
	UPIApp        string `json:"upi_app,omitempty"`
	// AvailableUPISchemes lists deep-link schemes the device can
	// resolve. Empty means the client did not probe.
	AvailableUPISchemes []string `json:"available_upi_schemes,omitempty"`
}

// Checkout places a buy-now order. For UPI the response carries the
// deep link the client must open; the order stays pending until the
// payment app calls back.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	var req checkoutRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	result, err := h.checkoutService.Checkout(r.Context(), sess.CustomerPhone, checkout.Input{
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		Method:           models.PaymentMethod(req.PaymentMethod),
		UPIAppID:         req.UPIApp,
		AvailableSchemes: req.AvailableUPISchemes,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCheckoutInFlight):
			h.respondError(w, r, http.StatusConflict, "a checkout is already in progress")
		case errors.Is(err, checkout.ErrMissingQuantity),
			errors.Is(err, checkout.ErrMissingPayment),
			errors.Is(err, checkout.ErrUnknownUPIApp):
			h.respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, payment.ErrAppUnavailable) && result != nil:
			// the failed order is persisted; tell the client which app
			// to install or to pick another method
			h.respondJSON(w, r, http.StatusUnprocessableEntity, map[string]any{
				"error": err.Error(),
				"order": result.Order,
			})
		default:
			h.loggerFromContext(r.Context()).Error("checkout failed", "error", err)
			h.respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	h.respondJSON(w, r, http.StatusCreated, result)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	orders, err := h.orderStore.ListByCustomer(r.Context(), sess.CustomerPhone, 50)
	if err != nil {
		h.loggerFromContext(r.Context()).Error("failed to list orders", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to list orders")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrder is the manual status check for orders whose UPI callback
// never arrived.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.checkoutService.CheckStatus(r.Context(), sess.CustomerPhone, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, "order not found")
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to load order", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to load order")
		return
	}

	h.respondJSON(w, r, http.StatusOK, order)
}
