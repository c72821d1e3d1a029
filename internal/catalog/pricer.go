package catalog

// Package catalog provides price calculation functionality.

import (
	"fmt"
	"math"
)

type Pricer struct{}

func NewPricer() *Pricer {
	return &Pricer{}
}

// Total computes unit price times normalized quantity, rounded to two
// decimal places for currency display.
func (p *Pricer) Total(unitPrice, normalizedQuantity float64) float64 {
	return math.Round(unitPrice*normalizedQuantity*100) / 100
}

// TotalPaise returns the total in currency minor units for persistence.
func (p *Pricer) TotalPaise(unitPrice, normalizedQuantity float64) int {
	return int(math.Round(unitPrice * normalizedQuantity * 100))
}

// ComputeTotal prices a quantity label against a catalog product.
func (p *Pricer) ComputeTotal(config *FarmGateConfig, productID, quantityLabel string) (float64, error) {
	product := config.FindProduct(productID)
	if product == nil {
		return 0, fmt.Errorf("product with id %s not found", productID)
	}

	if !product.Active {
		return 0, fmt.Errorf("product with id %s is not active", productID)
	}

	return p.Total(product.UnitPrice, Normalize(quantityLabel)), nil
}
