package payment

import (
	"net/url"
	"strings"
)

// CallbackStatus is the terminal state reported by a UPI app through
// the inbound callback URI.
type CallbackStatus string

const (
	CallbackSuccess   CallbackStatus = "success"
	CallbackFailure   CallbackStatus = "failure"
	CallbackSubmitted CallbackStatus = "submitted"
)

// ParseCallbackStatus extracts the payment status from an inbound
// callback URI. Matching is case-insensitive and by substring on the
// status query parameter, the way UPI apps actually report it.
func ParseCallbackStatus(rawURI string) (CallbackStatus, bool) {
	lowered := strings.ToLower(rawURI)

	switch {
	case strings.Contains(lowered, "status=success"):
		return CallbackSuccess, true
	case strings.Contains(lowered, "status=failure"):
		return CallbackFailure, true
	case strings.Contains(lowered, "status=submitted"):
		return CallbackSubmitted, true
	}
	return "", false
}

// ParseCallbackTransactionID pulls the transaction id out of a callback
// URI so the confirmation can be matched to its order.
func ParseCallbackTransactionID(rawURI string) string {
	parsed, err := url.Parse(rawURI)
	if err != nil {
		return ""
	}
	query := parsed.Query()
	for _, key := range []string{"txnRef", "tr", "tid"} {
		if v := strings.TrimSpace(query.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
