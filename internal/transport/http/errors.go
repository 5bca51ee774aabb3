package http

import (
	"errors"
	"net/http"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// errorBody — единый формат тела ошибки для клиентов витрины.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Детали отказа по остатку, чтобы клиент показал их без парсинга текста.
	ProductID string `json:"product_id,omitempty"`
	Requested int32  `json:"requested,omitempty"`
	Available int32  `json:"available,omitempty"`

	// ID заказа для прерванного оформления: слепой повтор опасен.
	OrderID string `json:"order_id,omitempty"`
}

// writeError транслирует доменную ошибку в HTTP-ответ. Неопознанная ошибка
// никогда не утаскивает внутренности наружу: клиент получает общий
// upstream_failure, детали остаются в логе.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, errorBody{
			Code:      "insufficient_stock",
			Message:   insufficient.Error(),
			ProductID: insufficient.ProductID,
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		})
		return
	}

	if incomplete, ok := domain.AsPlacementIncomplete(err); ok {
		writeJSON(w, http.StatusBadGateway, errorBody{
			Code:    "upstream_failure",
			Message: "order placement was interrupted, retry with the same idempotency key",
			OrderID: incomplete.OrderID,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Code: "not_authenticated", Message: "authentication required"})
	case errors.Is(err, domain.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "empty_cart", Message: "cart is empty"})
	case errors.Is(err, domain.ErrStatusTransition), errors.Is(err, domain.ErrOrderVersionConflict):
		writeJSON(w, http.StatusConflict, errorBody{Code: "conflict", Message: err.Error()})
	case domain.IsValidation(err), errors.Is(err, domain.ErrStatusInvalid), errors.Is(err, domain.ErrProductUnavailable):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: err.Error()})
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Code: "not_found", Message: err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Code: "upstream_failure", Message: "upstream dependency failed"})
	}
}
