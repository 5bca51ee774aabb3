package domain

import "time"

// OrderStatus описывает жизненный цикл заказа на витрине.
type OrderStatus string

const (
	// OrderStatusPending — заказ оформлен и ждёт обработки.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ взят в работу.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён до отгрузки; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, завершён ли жизненный цикл заказа.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo проверяет допустимость перехода статуса.
// Разрешено: pending → processing → shipped → delivered,
// а также pending/processing → cancelled. Прочие переходы запрещены.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// OrderLine — неизменяемая позиция заказа. Снимок имени и цены делается в
// момент оформления и намеренно не связан с живым товаром: последующие правки
// каталога не должны менять историю покупок.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	// ProductName — имя товара на момент покупки.
	ProductName string
	Qty         int32
	// PriceMinor — цена за единицу на момент покупки.
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует заказ и его позиции. После создания изменяется только
// поле Status.
type Order struct {
	ID     string
	UserID string
	Status OrderStatus
	// TotalAmountMinor — итог: сумма позиций плюс доставка.
	TotalAmountMinor int64
	ShippingAddress  string
	Phone            string
	Lines            []OrderLine
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const (
	// ShippingFeeMinor — фиксированная стоимость доставки.
	ShippingFeeMinor int64 = 99
	// FreeShippingThresholdMinor — порог бесплатной доставки; бесплатно
	// строго при subtotal > порога, ровно на пороге доставка платная.
	FreeShippingThresholdMinor int64 = 5000
)

// ShippingFor возвращает стоимость доставки для данного subtotal.
func ShippingFor(subtotalMinor int64) int64 {
	if subtotalMinor > FreeShippingThresholdMinor {
		return 0
	}
	return ShippingFeeMinor
}

// Subtotal суммирует позиции заказа: qty * price.
func (o *Order) Subtotal() int64 {
	var sum int64
	for _, line := range o.Lines {
		sum += int64(line.Qty) * line.PriceMinor
	}
	return sum
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список
// замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if o.Phone == "" {
		errs = append(errs, ErrPhoneRequired)
	}
	if o.ShippingAddress == "" {
		errs = append(errs, ErrAddressRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusInvalid)
	}
	if o.TotalAmountMinor < 0 {
		errs = append(errs, ErrTotalNegative)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}

	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
	}

	// Итог обязан сходиться с позициями и правилом доставки.
	subtotal := o.Subtotal()
	if subtotal+ShippingFor(subtotal) != o.TotalAmountMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// TimelineEvent — событие жизненного цикла заказа для истории в админке.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
