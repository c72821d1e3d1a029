package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/farmgateapp/farmgate/internal/db"
	"github.com/farmgateapp/farmgate/internal/models"
	"github.com/farmgateapp/farmgate/internal/session"
	"github.com/farmgateapp/farmgate/internal/subscription"
)

const dateLayout = "2006-01-02"

type createSubscriptionRequest struct {
	ProductID    string `json:"product_id"`
	Quantity     string `json:"quantity"`
	DeliveryTime string `json:"delivery_time"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
}

// CreateSubscription starts a recurring delivery for the signed-in
// customer.
func (h *Handlers) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	var req createSubscriptionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	fromDate, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "from_date must be YYYY-MM-DD")
		return
	}
	toDate, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "to_date must be YYYY-MM-DD")
		return
	}

	sub, err := h.subscriptions.Create(r.Context(), sess.CustomerPhone, subscription.Request{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		DeliveryTime: models.DeliveryTime(req.DeliveryTime),
		FromDate:     fromDate,
		ToDate:       toDate,
	})
	if err != nil {
		if subscription.IsValidationError(err) {
			h.respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to create subscription", "error", err)
		h.respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.respondJSON(w, r, http.StatusCreated, sub)
}

func (h *Handlers) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	subs, err := h.subscriptions.ListByCustomer(r.Context(), sess.CustomerPhone)
	if err != nil {
		h.loggerFromContext(r.Context()).Error("failed to list subscriptions", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{"subscriptions": subs})
}

// SubscriptionSchedule returns the delivery-day breakdown and the
// amount accrued so far.
func (h *Handlers) SubscriptionSchedule(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid subscription id")
		return
	}

	sub, err := h.subscriptions.Get(r.Context(), sess.CustomerPhone, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, "subscription not found")
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to load subscription", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	h.respondJSON(w, r, http.StatusOK, subscription.BuildSchedule(sub, time.Now()))
}

func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid subscription id")
		return
	}

	if err := h.subscriptions.Cancel(r.Context(), sess.CustomerPhone, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, "subscription not found")
			return
		}
		h.respondError(w, r, http.StatusConflict, err.Error())
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "cancelled"})
}
