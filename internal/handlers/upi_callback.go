package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/payment"
)

// callbackDedupeTTL bounds how long a transaction id is remembered for
// idempotency. Longer than any sane payment app retry window.
const callbackDedupeTTL = 48 * time.Hour

// UPICallback receives the confirmation redirect from the customer's
// UPI app. UPI apps are sloppy callers: status arrives in varying case
// and parameter order, retries happen, and many payments never call
// back at all. The handler is idempotent per transaction id and always
// answers 200 to stop retries once the callback was understood.
func (h *Handlers) UPICallback(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerFromContext(r.Context())

	if !h.callbackAuthorized(r) {
		logger.Warn("upi callback with bad secret", "remote_ip", clientIP(r))
		h.respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	rawURI := r.URL.String()
	transactionID := payment.ParseCallbackTransactionID(rawURI)
	if transactionID == "" {
		logger.Warn("upi callback without transaction id")
		h.respondError(w, r, http.StatusBadRequest, "missing transaction reference")
		return
	}

	status, ok := payment.ParseCallbackStatus(rawURI)
	if !ok {
		logger.Warn("upi callback with unrecognized status", "transaction_id", transactionID)
		h.respondError(w, r, http.StatusBadRequest, "unrecognized status")
		return
	}

	// first callback wins; replays and retries are acknowledged
	// without re-publishing
	dedupeKey := cache.CallbackKey("upi", transactionID)
	if _, err := h.cacheProvider.Get(r.Context(), dedupeKey); err == nil {
		logger.Info("duplicate upi callback ignored", "transaction_id", transactionID)
		h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "already processed"})
		return
	} else if !errors.Is(err, cache.ErrNotFound) {
		logger.Error("callback dedupe lookup failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "try again")
		return
	}

	if err := h.cacheProvider.Set(r.Context(), dedupeKey, string(status), callbackDedupeTTL); err != nil {
		logger.Error("failed to record callback", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "try again")
		return
	}

	h.paymentEvents.Publish(payment.Confirmation{
		TransactionID: transactionID,
		Status:        status,
		RawURI:        rawURI,
	})

	logger.Info("upi callback processed", "transaction_id", transactionID, "status", status)
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *Handlers) callbackAuthorized(r *http.Request) bool {
	secret := r.Header.Get("X-Callback-Secret")
	if secret == "" {
		secret = r.URL.Query().Get("secret")
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(h.config.UPICallbackSecret)) == 1
}
