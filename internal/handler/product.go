package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecomloop/storefront/internal/domain/product"
)

// recommendedCount is how many random picks the recommendations endpoint
// returns.
const recommendedCount = 3

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Featured    bool    `json:"featured"`
}

func toProductResponses(products []product.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       majorUnits(p.Price),
			Image:       p.Image,
			Category:    p.Category,
			Featured:    p.Featured,
		}
	}
	return out
}

// ListProducts returns the whole catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// ListFeatured returns the featured subset of the catalog.
func (h *Handler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListFeatured(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// recommendedProductResponse is the trimmed projection for recommendations.
// Category and the featured flag stay out of it.
type recommendedProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// ListRecommended returns a few random catalog picks.
func (h *Handler) ListRecommended(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListRecommended(r.Context(), recommendedCount)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	out := make([]recommendedProductResponse, len(products))
	for i, p := range products {
		out[i] = recommendedProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       majorUnits(p.Price),
			Image:       p.Image,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListByCategory returns the products in one category. An unknown or empty
// category is a 404.
func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	products, err := h.products.ListByCategory(r.Context(), category)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	if len(products) == 0 {
		writeError(w, http.StatusNotFound, "no products in this category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": toProductResponses(products),
	})
}
