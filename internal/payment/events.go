package payment

import (
	EventBus "github.com/asaskevich/EventBus"
)

const confirmationTopic = "payment:upi:confirmation"

// Confirmation is a terminal UPI callback event.
type Confirmation struct {
	TransactionID string
	Status        CallbackStatus
	RawURI        string
}

// Events fans UPI confirmations out to subscribers. Callers register a
// handler before launching a payment; the callback may never arrive,
// so handlers must not be the only path out of a pending state.
type Events struct {
	bus EventBus.Bus
}

func NewEvents() *Events {
	return &Events{bus: EventBus.New()}
}

// Subscribe registers fn for every confirmation until Unsubscribe.
func (e *Events) Subscribe(fn func(Confirmation)) error {
	return e.bus.Subscribe(confirmationTopic, fn)
}

// Unsubscribe removes a previously registered handler.
func (e *Events) Unsubscribe(fn func(Confirmation)) error {
	return e.bus.Unsubscribe(confirmationTopic, fn)
}

// Publish delivers a confirmation to all subscribers synchronously.
func (e *Events) Publish(confirmation Confirmation) {
	e.bus.Publish(confirmationTopic, confirmation)
}
