package catalog

import "strings"

// quantityOptions maps a product category to its discrete quantity
// choices. Categories without a preset list take free-text numeric entry.
var quantityOptions = map[string][]string{
	"milk":           {"100ml", "250ml", "500ml", "1L"},
	"eggs":           {"10 pcs"},
	"live_chicken":   {"1kg", "2kg", "5kg"},
	"cutted_chicken": {"1kg", "2kg", "5kg"},
	"cheese":         {},
	"yogurt":         {},
}

// OptionsFor returns the ordered quantity options for a category. An
// empty result signals free-text entry; unknown categories fall back to
// free-text rather than failing.
func OptionsFor(categoryKey string) []string {
	options, ok := quantityOptions[strings.ToLower(strings.TrimSpace(categoryKey))]
	if !ok {
		return nil
	}
	if len(options) == 0 {
		return nil
	}

	out := make([]string, len(options))
	copy(out, options)
	return out
}
