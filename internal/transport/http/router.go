// Пакет http — транспортный слой витрины: REST/JSON поверх gorilla/mux.
// Слой тонкий: разбор запроса, вызов сервиса, маппинг доменной ошибки на
// HTTP-статус. Бизнес-правил здесь нет.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/cart"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/checkout"
)

// Handler агрегирует сервисы витрины для HTTP-обработчиков.
type Handler struct {
	carts    *cart.Service
	workflow *checkout.Workflow
	products domain.ProductRepository
	profiles domain.ProfileRepository
	logger   *log.Entry
}

// NewHandler создаёт HTTP-обработчик витрины.
func NewHandler(
	carts *cart.Service,
	workflow *checkout.Workflow,
	products domain.ProductRepository,
	profiles domain.ProfileRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{
		carts:    carts,
		workflow: workflow,
		products: products,
		profiles: profiles,
		logger:   logger,
	}
}

// Router собирает маршруты витрины.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Каталог
	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)

	// Корзина
	api.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.clearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/lines", h.addCartLine).Methods(http.MethodPost)
	api.HandleFunc("/cart/lines/{lineID}", h.setCartLineQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart/lines/{lineID}", h.removeCartLine).Methods(http.MethodDelete)

	// Заказы
	api.HandleFunc("/orders", h.placeOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/cancel", h.cancelOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/timeline", h.orderTimeline).Methods(http.MethodGet)

	// Профиль доставки
	api.HandleFunc("/profile", h.getProfile).Methods(http.MethodGet)

	// Административные операции
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}/stock", h.adjustStock).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/status", h.updateOrderStatus).Methods(http.MethodPut)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
