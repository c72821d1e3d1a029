package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/farmgateapp/farmgate/internal/models"
)

type fakeLauncher struct {
	canOpen bool
	openErr error
	opened  []string
}

func (f *fakeLauncher) CanOpen(_ context.Context, _ string) bool {
	return f.canOpen
}

func (f *fakeLauncher) Open(_ context.Context, uri string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, uri)
	return nil
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	gen, err := NewTransactionIDGenerator(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	router, err := NewRouter("countryfarm@okaxis", "Country Farm Dairy", gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return router
}

func TestRoute_CashOnDelivery(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	launcher := &fakeLauncher{canOpen: true}

	outcome, err := router.Route(context.Background(), launcher, Selection{Method: models.PaymentCashOnDelivery}, 30, "Fresh Cow Milk", "500ml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.State != ConfirmedLocally {
		t.Errorf("expected ConfirmedLocally, got %s", outcome.State)
	}
	if len(launcher.opened) != 0 {
		t.Error("cash on delivery must not touch the launcher")
	}
}

func TestRoute_CardConfirmsLocally(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	outcome, err := router.Route(context.Background(), nil, Selection{Method: models.PaymentCard}, 600, "Live Chicken", "2kg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.State != ConfirmedLocally {
		t.Errorf("expected ConfirmedLocally, got %s", outcome.State)
	}
}

func TestRoute_UPI(t *testing.T) {
	t.Parallel()

	app, _ := FindApp("gpay")
	router := newTestRouter(t)
	launcher := &fakeLauncher{canOpen: true}

	outcome, err := router.Route(context.Background(), launcher, Selection{Method: models.PaymentUPI, App: &app}, 30, "Fresh Cow Milk", "500ml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.State != AwaitingExternalConfirmation {
		t.Fatalf("expected AwaitingExternalConfirmation, got %s", outcome.State)
	}
	if outcome.TransactionID == "" {
		t.Error("expected a transaction id")
	}
	if !strings.Contains(outcome.PayURI, "am=30.00") {
		t.Errorf("expected amount 30.00 in URI, got %q", outcome.PayURI)
	}
	if len(launcher.opened) != 1 || launcher.opened[0] != outcome.PayURI {
		t.Errorf("expected launcher to open the pay URI, opened %v", launcher.opened)
	}
}

func TestRoute_UPIAppUnavailable(t *testing.T) {
	t.Parallel()

	app, _ := FindApp("paytm")
	router := newTestRouter(t)
	launcher := &fakeLauncher{canOpen: false}

	outcome, err := router.Route(context.Background(), launcher, Selection{Method: models.PaymentUPI, App: &app}, 30, "Fresh Cow Milk", "500ml")
	if !errors.Is(err, ErrAppUnavailable) {
		t.Fatalf("expected ErrAppUnavailable, got %v", err)
	}
	if outcome.State != Failed {
		t.Errorf("expected Failed, got %s", outcome.State)
	}
}

func TestRoute_UPIRequiresApp(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	outcome, err := router.Route(context.Background(), &fakeLauncher{canOpen: true}, Selection{Method: models.PaymentUPI}, 30, "Fresh Cow Milk", "500ml")
	if err == nil {
		t.Fatal("expected error without app selection")
	}
	if outcome.State != Failed {
		t.Errorf("expected Failed, got %s", outcome.State)
	}
}

func TestRoute_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if _, err := router.Route(context.Background(), nil, Selection{Method: "wire"}, 30, "Milk", "1L"); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := router.Route(context.Background(), nil, Selection{Method: models.PaymentCashOnDelivery}, 0, "Milk", "1L"); err == nil {
		t.Error("expected error for zero amount")
	}
}

func TestEventsPublishSubscribe(t *testing.T) {
	events := NewEvents()

	var received []Confirmation
	handler := func(c Confirmation) {
		received = append(received, c)
	}
	if err := events.Subscribe(handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events.Publish(Confirmation{TransactionID: "T1", Status: CallbackSuccess})
	if len(received) != 1 || received[0].TransactionID != "T1" {
		t.Fatalf("expected one confirmation, got %v", received)
	}

	if err := events.Unsubscribe(handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events.Publish(Confirmation{TransactionID: "T2", Status: CallbackFailure})
	if len(received) != 1 {
		t.Error("expected no delivery after unsubscribe")
	}
}
