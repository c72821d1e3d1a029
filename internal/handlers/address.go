package handlers

import (
	"errors"
	"net/http"

	"github.com/farmgateapp/farmgate/internal/cache"
	"github.com/farmgateapp/farmgate/internal/geo"
	"github.com/farmgateapp/farmgate/internal/session"
)

type resolveAddressRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ResolveAddress reverse-geocodes the device location and caches the
// result as the customer's delivery address.
func (h *Handlers) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	var req resolveAddressRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	address, err := h.resolver.Resolve(r.Context(), req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, geo.ErrUnresolvable) {
			h.respondError(w, r, http.StatusUnprocessableEntity, "location could not be resolved to an address")
			return
		}
		h.loggerFromContext(r.Context()).Error("reverse geocoding failed", "error", err)
		h.respondError(w, r, http.StatusBadGateway, "address lookup failed, try again")
		return
	}

	if err := h.addressStore.Save(r.Context(), sess.CustomerPhone, address); err != nil {
		h.loggerFromContext(r.Context()).Warn("failed to cache address", "error", err)
	}

	h.respondJSON(w, r, http.StatusOK, address)
}

// GetAddress returns the cached delivery address, if any.
func (h *Handlers) GetAddress(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	address, err := h.addressStore.Load(r.Context(), sess.CustomerPhone)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, "no saved address")
			return
		}
		h.loggerFromContext(r.Context()).Error("failed to load address", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to load address")
		return
	}

	h.respondJSON(w, r, http.StatusOK, address)
}

func (h *Handlers) ClearAddress(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSessionFromContext(r.Context())

	if err := h.addressStore.Clear(r.Context(), sess.CustomerPhone); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to clear address", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "failed to clear address")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}
