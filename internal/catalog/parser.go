// Package catalog provides farmgate.yaml parsing, validation and
// quantity-based pricing.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type FarmGateConfig struct {
	Shop     ShopConfig      `yaml:"shop"`
	Products []ProductConfig `yaml:"products"`
}

type ShopConfig struct {
	Name     string    `yaml:"name"`
	Currency string    `yaml:"currency"`
	UPI      UPIConfig `yaml:"upi"`
}

type UPIConfig struct {
	PayeeAddress string `yaml:"payee_address"`
	PayeeName    string `yaml:"payee_name"`
}

type ProductConfig struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Category  string  `yaml:"category"`
	UnitPrice float64 `yaml:"unit_price"`
	Rating    float64 `yaml:"rating"`
	ImageURL  string  `yaml:"image_url"`
	Active    bool    `yaml:"active"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*FarmGateConfig, error) {
	var config FarmGateConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

func (p *Parser) ParseFile(path string) (*FarmGateConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return p.Parse(content)
}

func (c *FarmGateConfig) FindProduct(id string) *ProductConfig {
	if c == nil {
		return nil
	}
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i]
		}
	}
	return nil
}
