package subscription

import (
	"time"

	"github.com/farmgateapp/farmgate/internal/models"
)

// DeliveryDay is one calendar day inside a subscription's date range.
type DeliveryDay struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Schedule is the calendar/bill view of a subscription: every delivery
// day in the range split into completed and remaining, with the running
// bill for deliveries made so far.
type Schedule struct {
	SubscriptionID string        `json:"subscription_id"`
	Days           []DeliveryDay `json:"days"`
	CompletedDays  int           `json:"completed_days"`
	RemainingDays  int           `json:"remaining_days"`
	AmountDuePaise int           `json:"amount_due_paise"`
}

// BuildSchedule expands a subscription into its delivery calendar as of
// now. Days strictly before today count as completed; a "both" delivery
// time bills two deliveries per day.
func BuildSchedule(sub *models.Subscription, now time.Time) Schedule {
	schedule := Schedule{SubscriptionID: sub.ID.String()}

	deliveriesPerDay := 1
	if sub.DeliveryTime == models.DeliveryBoth {
		deliveriesPerDay = 2
	}

	today := dateOnly(now)
	for d := dateOnly(sub.FromDate); !d.After(dateOnly(sub.ToDate)); d = d.AddDate(0, 0, 1) {
		completed := d.Before(today)
		schedule.Days = append(schedule.Days, DeliveryDay{
			Date:      d.Format("2006-01-02"),
			Completed: completed,
		})
		if completed {
			schedule.CompletedDays++
		} else {
			schedule.RemainingDays++
		}
	}

	schedule.AmountDuePaise = schedule.CompletedDays * deliveriesPerDay * sub.PricePaise
	return schedule
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
