package models

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryTime string

const (
	DeliveryMorning DeliveryTime = "morning"
	DeliveryEvening DeliveryTime = "evening"
	DeliveryBoth    DeliveryTime = "both"
)

func (d DeliveryTime) Valid() bool {
	switch d {
	case DeliveryMorning, DeliveryEvening, DeliveryBoth:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCompleted SubscriptionStatus = "completed"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID            uuid.UUID          `json:"id"`
	CustomerPhone string             `json:"customer_phone"`
	ProductID     string             `json:"product_id"`
	ProductName   string             `json:"product_name"`
	Quantity      string             `json:"quantity"`
	DeliveryTime  DeliveryTime       `json:"delivery_time"`
	FromDate      time.Time          `json:"from_date"`
	ToDate        time.Time          `json:"to_date"`
	PricePaise    int                `json:"price_paise"`
	Status        SubscriptionStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}
