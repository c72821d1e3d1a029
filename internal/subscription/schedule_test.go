package subscription

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farmgateapp/farmgate/internal/models"
)

func TestBuildSchedule(t *testing.T) {
	t.Parallel()

	sub := &models.Subscription{
		ID:           uuid.New(),
		ProductName:  "Fresh Cow Milk",
		Quantity:     "500ml",
		DeliveryTime: models.DeliveryMorning,
		FromDate:     time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		ToDate:       time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC),
		PricePaise:   3000,
	}

	now := time.Date(2025, 10, 5, 9, 30, 0, 0, time.UTC)
	schedule := BuildSchedule(sub, now)

	if len(schedule.Days) != 10 {
		t.Fatalf("expected 10 days, got %d", len(schedule.Days))
	}
	if schedule.CompletedDays != 4 {
		t.Errorf("expected 4 completed days, got %d", schedule.CompletedDays)
	}
	if schedule.RemainingDays != 6 {
		t.Errorf("expected 6 remaining days, got %d", schedule.RemainingDays)
	}
	if schedule.AmountDuePaise != 4*3000 {
		t.Errorf("expected amount due 12000, got %d", schedule.AmountDuePaise)
	}

	if schedule.Days[0].Date != "2025-10-01" || !schedule.Days[0].Completed {
		t.Errorf("unexpected first day %+v", schedule.Days[0])
	}
	if schedule.Days[9].Date != "2025-10-10" || schedule.Days[9].Completed {
		t.Errorf("unexpected last day %+v", schedule.Days[9])
	}
}

func TestBuildScheduleBothDeliveriesBillsDouble(t *testing.T) {
	t.Parallel()

	sub := &models.Subscription{
		ID:           uuid.New(),
		DeliveryTime: models.DeliveryBoth,
		FromDate:     time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		ToDate:       time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
		PricePaise:   3000,
	}

	now := time.Date(2025, 10, 3, 6, 0, 0, 0, time.UTC)
	schedule := BuildSchedule(sub, now)

	if schedule.CompletedDays != 2 {
		t.Fatalf("expected 2 completed days, got %d", schedule.CompletedDays)
	}
	if schedule.AmountDuePaise != 2*2*3000 {
		t.Errorf("expected amount due 12000, got %d", schedule.AmountDuePaise)
	}
}

func TestBuildScheduleBeforeStart(t *testing.T) {
	t.Parallel()

	sub := &models.Subscription{
		ID:           uuid.New(),
		DeliveryTime: models.DeliveryEvening,
		FromDate:     time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		ToDate:       time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		PricePaise:   4500,
	}

	schedule := BuildSchedule(sub, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC))

	if schedule.CompletedDays != 0 {
		t.Errorf("expected no completed days, got %d", schedule.CompletedDays)
	}
	if schedule.AmountDuePaise != 0 {
		t.Errorf("expected no amount due, got %d", schedule.AmountDuePaise)
	}
	if schedule.RemainingDays != 5 {
		t.Errorf("expected 5 remaining days, got %d", schedule.RemainingDays)
	}
}
