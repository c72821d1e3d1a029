package catalog

// Package catalog provides catalog validation.

import (
	"fmt"
	"regexp"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

var vpaRegex = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`)

// IsValidVPA validates a UPI virtual payment address (handle@psp).
func IsValidVPA(vpa string) bool {
	return vpaRegex.MatchString(vpa)
}

func (v *Validator) Validate(config *FarmGateConfig) error {
	if err := v.validateShop(&config.Shop); err != nil {
		return fmt.Errorf("shop validation failed: %w", err)
	}

	if len(config.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	ids := make(map[string]bool)
	for i, product := range config.Products {
		if err := v.validateProduct(&product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		if ids[product.ID] {
			return fmt.Errorf("duplicate product id: %s", product.ID)
		}
		ids[product.ID] = true
	}

	return nil
}

func (v *Validator) validateShop(shop *ShopConfig) error {
	if strings.TrimSpace(shop.Name) == "" {
		return fmt.Errorf("shop name is required")
	}

	if shop.Currency != "inr" {
		return fmt.Errorf("only INR currency is supported")
	}

	payee := strings.TrimSpace(shop.UPI.PayeeAddress)
	if payee == "" {
		return fmt.Errorf("UPI payee address is required")
	}
	if !IsValidVPA(payee) {
		return fmt.Errorf("UPI payee address must be a valid VPA")
	}

	if strings.TrimSpace(shop.UPI.PayeeName) == "" {
		return fmt.Errorf("UPI payee name is required")
	}

	return nil
}

func (v *Validator) validateProduct(product *ProductConfig) error {
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("product id is required")
	}

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if strings.TrimSpace(product.Category) == "" {
		return fmt.Errorf("product category is required")
	}

	if product.UnitPrice <= 0 {
		return fmt.Errorf("product unit price must be positive")
	}

	if product.Rating < 0 || product.Rating > 5 {
		return fmt.Errorf("product rating must be between 0 and 5")
	}

	return nil
}
