package checkout

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/messaging/kafka"
)

const (
	statusUpdateAttempts = 3
	statusUpdateBackoff  = 10 * time.Millisecond
)

// UpdateStatus переводит заказ в новый статус по машине состояний.
// Конфликт optimistic locking перечитывается и повторяется: проигравший
// конкурентный апдейт заново проверяет допустимость перехода.
func (w *Workflow) UpdateStatus(orderID string, next domain.OrderStatus, reason string) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrStatusInvalid, next)
	}

	var order domain.Order
	var err error
	for attempt := 1; attempt <= statusUpdateAttempts; attempt++ {
		order, err = w.orders.Get(orderID)
		if err != nil {
			return domain.Order{}, err
		}

		if order.Status == next {
			// Повторный перевод в тот же статус идемпотентен.
			return order, nil
		}
		if !order.Status.CanTransitionTo(next) {
			return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrStatusTransition, order.Status, next)
		}

		prev := order.Status
		order.Status = next
		order.UpdatedAt = time.Now().UTC()

		err = w.orders.Save(order)
		if err == nil {
			w.afterStatusChange(&order, prev, reason)
			return order, nil
		}
		if !domain.IsVersionConflict(err) {
			return domain.Order{}, fmt.Errorf("save order status: %w", err)
		}

		w.logger.WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt,
		}).Warn("order version conflict, retrying status update")
		time.Sleep(statusUpdateBackoff * time.Duration(attempt))
	}

	return domain.Order{}, fmt.Errorf("update order status after %d attempts: %w", statusUpdateAttempts, err)
}

// Cancel отменяет заказ по требованию его владельца.
func (w *Workflow) Cancel(userID, orderID, reason string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}
	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		// Чужой заказ неотличим от несуществующего.
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	return w.UpdateStatus(orderID, domain.OrderStatusCancelled, reason)
}

// afterStatusChange выполняет побочные эффекты успешного перехода: возврат
// резерва при отмене и публикацию событий.
func (w *Workflow) afterStatusChange(order *domain.Order, prev domain.OrderStatus, reason string) {
	if order.Status == domain.OrderStatusCancelled {
		for _, line := range order.Lines {
			if _, err := w.ledger.Reserve(line.ProductID, line.Qty); err != nil {
				w.logger.WithError(err).WithFields(log.Fields{
					"order_id":   order.ID,
					"product_id": line.ProductID,
				}).Error("failed to release stock on cancellation")
			}
		}
	}

	eventType := "OrderStatusChanged"
	kafkaType := kafka.EventTypeOrderStatusChanged
	if order.Status == domain.OrderStatusCancelled {
		eventType = "OrderCancelled"
		kafkaType = kafka.EventTypeOrderCancelled
	}

	w.emitOrderEventWithReason(order, eventType, reason, map[string]interface{}{
		"from":   string(prev),
		"to":     string(order.Status),
		"reason": reason,
	})
	w.publishKafkaEvent(kafkaType, order, map[string]interface{}{
		"from":   string(prev),
		"reason": reason,
	})

	w.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"from":     prev,
		"to":       order.Status,
	}).Info("order status updated")
}

// ListOrders возвращает заказы пользователя, новые первыми.
func (w *Workflow) ListOrders(userID string, limit int) ([]domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return w.orders.ListByUser(userID, limit)
}

// GetOrder возвращает заказ пользователя вместе с позициями.
func (w *Workflow) GetOrder(userID, orderID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrNotAuthenticated
	}
	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// Timeline возвращает журнал событий заказа.
func (w *Workflow) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if w.timeline == nil {
		return nil, nil
	}
	if _, err := w.orders.Get(orderID); err != nil {
		return nil, err
	}
	return w.timeline.List(orderID)
}
