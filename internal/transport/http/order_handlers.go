package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/checkout"
)

type placeOrderRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// placeOrder запускает оформление заказа. Ключ идемпотентности берётся из
// заголовка Idempotency-Key: повтор после таймаута вернёт тот же заказ.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
		return
	}

	order, err := h.workflow.PlaceOrder(userID(r), checkout.PlaceOrderRequest{
		Phone:          req.Phone,
		Address:        req.Address,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.workflow.ListOrders(userID(r), 0)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.workflow.GetOrder(userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
			return
		}
	}

	order, err := h.workflow.Cancel(userID(r), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) orderTimeline(w http.ResponseWriter, r *http.Request) {
	// Доступ через GetOrder: timeline чужого заказа закрыт так же, как он сам.
	order, err := h.workflow.GetOrder(userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	events, err := h.workflow.Timeline(order.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, timelineEventResponse{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	writeJSON(w, http.StatusOK, result)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: "invalid json body"})
		return
	}

	order, err := h.workflow.UpdateStatus(mux.Vars(r)["id"], domain.OrderStatus(req.Status), req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		h.writeError(w, domain.ErrNotAuthenticated)
		return
	}

	profile, err := h.profiles.Get(user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		UserID:    profile.UserID,
		Phone:     profile.Phone,
		Address:   profile.Address,
		UpdatedAt: profile.UpdatedAt,
	})
}
