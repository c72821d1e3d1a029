package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/farmgateapp/farmgate/internal/catalog"
)

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	// QuantityOptions is empty for categories where the customer types
	// a free-form quantity.
	QuantityOptions []string `json:"quantity_options,omitempty"`
}

func toProductResponse(p *catalog.ProductConfig) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Price:           p.UnitPrice,
		Rating:          p.Rating,
		ImageURL:        p.ImageURL,
		QuantityOptions: catalog.OptionsFor(p.Category),
	}
}

// ListProducts returns the active products with their quantity options.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := make([]productResponse, 0, len(h.catalog.Products))
	for i := range h.catalog.Products {
		p := &h.catalog.Products[i]
		if !p.Active {
			continue
		}
		products = append(products, toProductResponse(p))
	}

	h.respondJSON(w, r, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	product := h.catalog.FindProduct(id)
	if product == nil || !product.Active {
		h.respondError(w, r, http.StatusNotFound, "product not found")
		return
	}

	h.respondJSON(w, r, http.StatusOK, toProductResponse(product))
}
