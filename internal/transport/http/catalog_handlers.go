package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(0)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result := make([]productResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int32  `json:"stock_quantity"`
	IsAvailable bool   `json:"is_available"`
	CategoryID  string `json:"category_id"`
	ImageURL    string `json:"image_url"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
		return
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		PriceMinor:    req.PriceMinor,
		StockQuantity: req.Stock,
		IsAvailable:   req.IsAvailable,
		CategoryID:    req.CategoryID,
		ImageURL:      req.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if errs := product.Validate(); len(errs) > 0 {
		h.writeError(w, errs[0])
		return
	}

	if err := h.products.Create(product); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

type adjustStockRequest struct {
	Delta int32 `json:"delta"`
}

// adjustStock — ручная корректировка остатка через ledger: тот же арбитраж,
// что и у оформления заказа, отрицательный итог прижимается к нулю. Каждая
// корректировка публикуется как событие остатка.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
		return
	}

	productID := mux.Vars(r)["id"]
	stock, err := h.workflow.AdjustStock(productID, req.Delta)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"product_id":     productID,
		"stock_quantity": stock,
	})
}
