package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/farmgateapp/farmgate/internal/catalog"
)

func newProductHandlers() *Handlers {
	return &Handlers{
		catalog: &catalog.FarmGateConfig{
			Products: []catalog.ProductConfig{
				{ID: "milk-cow", Name: "Cow Milk", Category: "milk", UnitPrice: 60, Rating: 4.5, Active: true},
				{ID: "eggs", Name: "Country Eggs", Category: "eggs", UnitPrice: 90, Active: true},
				{ID: "paneer", Name: "Paneer", Category: "cheese", UnitPrice: 300, Active: true},
				{ID: "retired", Name: "Buffalo Milk", Category: "milk", UnitPrice: 70, Active: false},
			},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestListProducts(t *testing.T) {
	h := newProductHandlers()

	r := httptest.NewRequest("GET", "/api/products", nil)
	w := httptest.NewRecorder()
	h.ListProducts(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Products []productResponse `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(body.Products) != 3 {
		t.Fatalf("products = %d, want 3 (inactive excluded)", len(body.Products))
	}

	milk := body.Products[0]
	if milk.ID != "milk-cow" {
		t.Errorf("first product = %q, want milk-cow", milk.ID)
	}
	if len(milk.QuantityOptions) == 0 {
		t.Error("milk has no quantity options")
	}

	for _, p := range body.Products {
		if p.Category == "cheese" && len(p.QuantityOptions) != 0 {
			t.Errorf("cheese quantity options = %v, want none (free text)", p.QuantityOptions)
		}
	}
}

func TestGetProduct(t *testing.T) {
	h := newProductHandlers()
	router := mux.NewRouter()
	router.HandleFunc("/api/products/{id}", h.GetProduct)

	tests := []struct {
		id         string
		wantStatus int
	}{
		{"milk-cow", http.StatusOK},
		{"retired", http.StatusNotFound},
		{"nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/products/"+tt.id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != tt.wantStatus {
			t.Errorf("GetProduct(%s) status = %d, want %d", tt.id, w.Code, tt.wantStatus)
		}
	}
}
