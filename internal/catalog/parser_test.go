package catalog

import "testing"

const sampleCatalog = `
shop:
  name: Country Farm Dairy
  currency: inr
  upi:
    payee_address: countryfarm@okaxis
    payee_name: Country Farm Dairy
products:
  - id: milk_cow
    name: Fresh Cow Milk
    category: milk
    unit_price: 60
    rating: 4.5
    active: true
  - id: eggs_organic
    name: Organic Eggs
    category: eggs
    unit_price: 80
    active: true
`

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	config, err := parser.Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Shop.Name != "Country Farm Dairy" {
		t.Errorf("expected shop name Country Farm Dairy, got %q", config.Shop.Name)
	}
	if config.Shop.UPI.PayeeAddress != "countryfarm@okaxis" {
		t.Errorf("unexpected payee address %q", config.Shop.UPI.PayeeAddress)
	}
	if len(config.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(config.Products))
	}
	if config.Products[0].UnitPrice != 60 {
		t.Errorf("expected unit price 60, got %v", config.Products[0].UnitPrice)
	}
}

func TestParser_ParseInvalidYAML(t *testing.T) {
	parser := NewParser()

	if _, err := parser.Parse([]byte("shop: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestFindProduct(t *testing.T) {
	parser := NewParser()
	config, err := parser.Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if product := config.FindProduct("eggs_organic"); product == nil || product.Name != "Organic Eggs" {
		t.Errorf("expected to find Organic Eggs, got %+v", product)
	}
	if product := config.FindProduct("missing"); product != nil {
		t.Errorf("expected nil for unknown product, got %+v", product)
	}
}
