package domain

import "time"

// StockReserver — порт Inventory Ledger для остальных компонентов: единая
// точка арбитража конкурентных изменений остатка.
type StockReserver interface {
	// Reserve применяет знаковую дельту к остатку товара: отрицательная —
	// потребление, положительная — возврат/пополнение. Возвращает новый
	// остаток; при stock+delta < 0 — InsufficientStockError, остаток не
	// меняется.
	Reserve(productID string, delta int32) (int32, error)
	// Adjust — административная корректировка; прижимается к нулю вместо
	// отказа, остаток не может стать отрицательным.
	Adjust(productID string, delta int32) (int32, error)
}

// CheckoutStep задаёт константы шагов оформления для метрик/логов/ошибок.
type CheckoutStep string

const (
	CheckoutStepValidate  CheckoutStep = "validate"
	CheckoutStepReserve   CheckoutStep = "reserve"
	CheckoutStepOrder     CheckoutStep = "order"
	CheckoutStepLines     CheckoutStep = "lines"
	CheckoutStepClearCart CheckoutStep = "clear_cart"
	CheckoutStepProfile   CheckoutStep = "profile"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxPublisher публикует события из outbox наружу; обязан быть
// идемпотентным.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}
