package checkout

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/messaging/kafka"
)

// emitOrderEvent кладёт событие заказа в transactional outbox и timeline.
// Сбой публикации не прерывает бизнес-операцию: outbox worker дотянет
// событие позже, а timeline — диагностический журнал, не источник истины.
func (w *Workflow) emitOrderEvent(order *domain.Order, eventType string, payload map[string]interface{}) {
	w.emitOrderEventWithReason(order, eventType, "", payload)
}

func (w *Workflow) emitOrderEventWithReason(order *domain.Order, eventType, reason string, payload map[string]interface{}) {
	if w.outbox != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			w.logger.WithError(err).WithField("order_id", order.ID).Error("failed to marshal outbox payload")
			body = []byte("{}")
		}
		_, err = w.outbox.Enqueue(domain.OutboxMessage{
			ID:            uuid.NewString(),
			AggregateType: "order",
			AggregateID:   order.ID,
			EventType:     eventType,
			Payload:       body,
		})
		if err != nil {
			w.logger.WithError(err).WithFields(log.Fields{
				"order_id":   order.ID,
				"event_type": eventType,
			}).Error("failed to enqueue outbox event")
		} else if w.metrics != nil {
			w.metrics.RecordOutboxEvent()
		}
	}

	if w.timeline != nil {
		err := w.timeline.Append(domain.TimelineEvent{
			OrderID:  order.ID,
			Type:     eventType,
			Reason:   reason,
			Occurred: time.Now().UTC(),
		})
		if err != nil {
			w.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to append timeline event")
		} else if w.metrics != nil {
			w.metrics.RecordTimelineEvent()
		}
	}
}

// emitStockEvent фиксирует корректировку остатка: в outbox для надёжной
// доставки и, при настроенном producer, напрямую в топик stock-событий.
func (w *Workflow) emitStockEvent(productID string, delta, newStock int32) {
	if w.outbox != nil {
		body, err := json.Marshal(map[string]interface{}{
			"product_id":     productID,
			"delta":          delta,
			"stock_quantity": newStock,
		})
		if err != nil {
			w.logger.WithError(err).WithField("product_id", productID).Error("failed to marshal stock event payload")
			body = []byte("{}")
		}
		_, err = w.outbox.Enqueue(domain.OutboxMessage{
			ID:            uuid.NewString(),
			AggregateType: "product",
			AggregateID:   productID,
			EventType:     "StockAdjusted",
			Payload:       body,
		})
		if err != nil {
			w.logger.WithError(err).WithField("product_id", productID).Error("failed to enqueue stock event")
		} else if w.metrics != nil {
			w.metrics.RecordOutboxEvent()
		}
	}

	if w.kafkaProducer == nil {
		return
	}
	event := kafka.NewStockEvent(productID, delta, newStock)
	if err := w.kafkaProducer.PublishEvent(kafka.TopicStockEvents, productID, event); err != nil {
		w.logger.WithError(err).WithField("product_id", productID).Error("failed to publish stock event")
	}
}

// publishKafkaEvent шлёт событие напрямую в Kafka, если producer настроен.
func (w *Workflow) publishKafkaEvent(eventType kafka.EventType, order *domain.Order, metadata map[string]interface{}) {
	if w.kafkaProducer == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.UserID, string(order.Status), metadata)
	if err := w.kafkaProducer.PublishEvent(kafka.TopicOrderEvents, order.ID, event); err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Error("failed to publish kafka event")
	}
}
