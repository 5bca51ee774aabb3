package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart))
}

type addCartLineRequest struct {
	ProductID string `json:"product_id"`
	// Quantity — указатель, чтобы отличить пропущенное поле от нуля:
	// без поля в теле количество по умолчанию равно 1.
	Quantity *int32 `json:"quantity"`
}

func (h *Handler) addCartLine(w http.ResponseWriter, r *http.Request) {
	var req addCartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
		return
	}

	qty := int32(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	line, err := h.carts.AddLine(userID(r), req.ProductID, qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cartLineResponse{
		ID:        line.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		AddedAt:   line.AddedAt,
	})
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

func (h *Handler) setCartLineQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
		return
	}

	line, err := h.carts.SetQuantity(userID(r), mux.Vars(r)["lineID"], req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartLineResponse{
		ID:        line.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		AddedAt:   line.AddedAt,
	})
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.RemoveLine(userID(r), mux.Vars(r)["lineID"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(userID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
