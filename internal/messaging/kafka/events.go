package kafka

import "time"

// EventType определяет тип события витрины.
type EventType string

const (
	// События заказа
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"

	// События оформления
	EventTypePlacementIncomplete EventType = "placement.incomplete"
	EventTypePlacementSwept      EventType = "placement.swept"

	// События остатков
	EventTypeStockAdjusted EventType = "stock.adjusted"
)

// Topics для Kafka.
const (
	TopicOrderEvents = "shop.order.events"
	TopicStockEvents = "shop.stock.events"
)

// OrderEvent — событие жизненного цикла заказа.
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	UserID    string                 `json:"user_id,omitempty"`
	Status    string                 `json:"status,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent — событие изменения остатка.
type StockEvent struct {
	EventType EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	Delta     int32     `json:"delta"`
	Stock     int32     `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создаёт событие заказа с текущим временем.
func NewOrderEvent(eventType EventType, orderID, userID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewStockEvent создаёт событие остатка с текущим временем.
func NewStockEvent(productID string, delta, stock int32) *StockEvent {
	return &StockEvent{
		EventType: EventTypeStockAdjusted,
		ProductID: productID,
		Delta:     delta,
		Stock:     stock,
		Timestamp: time.Now(),
	}
}
