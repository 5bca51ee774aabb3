package domain

import "time"

// PlacementStatus описывает жизненный цикл ключа идемпотентности оформления.
type PlacementStatus string

const (
	// PlacementStatusProcessing — оформление по ключу идёт прямо сейчас
	// либо прервалось, не дойдя до конца.
	PlacementStatusProcessing PlacementStatus = "processing"
	// PlacementStatusDone — оформление завершено, заказ записан целиком.
	PlacementStatusDone PlacementStatus = "done"
	// PlacementStatusFailed — оформление отклонено до записи заказа.
	PlacementStatusFailed PlacementStatus = "failed"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s PlacementStatus) Valid() bool {
	switch s {
	case PlacementStatusProcessing, PlacementStatusDone, PlacementStatusFailed:
		return true
	default:
		return false
	}
}

// PlacementLine — снимок позиции, под которую берётся резерв. Снимок
// пишется до резервирования и служит единственным источником позиций при
// возобновлении: корзина и цены к моменту повтора могли измениться.
type PlacementLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int32  `json:"qty"`
	PriceMinor  int64  `json:"price_minor"`
}

// PlacementRecord связывает ключ идемпотентности с заказом. Ключ фиксирует
// ID заказа до записи заголовка, поэтому повтор после частичного сбоя
// возобновляет ту же строку заказа, а не создаёт дубликат.
type PlacementRecord struct {
	Key     string
	UserID  string
	OrderID string
	Status  PlacementStatus
	// Lines заполняется перед резервированием; возобновление дописывает
	// ровно эти позиции, сколько бы ни стоил товар и что бы ни лежало в
	// корзине на момент повтора.
	Lines     []PlacementLine
	TTLAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
