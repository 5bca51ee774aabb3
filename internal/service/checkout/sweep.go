package checkout

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/messaging/kafka"
)

const sweepBatchSize = 100

// Sweeper находит заказы-сироты: заголовки без единой позиции, записанные
// оформлением, которое так и не дошло до шага lines. По истечении льготного
// периода такой заказ отменяется, чтобы не висеть вечным pending.
//
// Остаток sweeper не возвращает: у заказа без позиций нет записи о том,
// сколько было зарезервировано. Событие отмены содержит причину, по которой
// оператор может свериться с ledger вручную.
type Sweeper struct {
	workflow *Workflow

	interval time.Duration
	grace    time.Duration
	logger   *log.Entry
}

// NewSweeper создаёт sweeper с заданным периодом обхода и льготным периодом,
// в течение которого незавершённое оформление ещё может возобновиться.
func NewSweeper(workflow *Workflow, interval, grace time.Duration, logger *log.Entry) *Sweeper {
	if logger == nil {
		logger = log.New().WithField("component", "order-sweeper")
	}
	return &Sweeper{
		workflow: workflow,
		interval: interval,
		grace:    grace,
		logger:   logger,
	}
}

// Run запускает периодический обход до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.WithFields(log.Fields{
		"interval": s.interval,
		"grace":    s.grace,
	}).Info("order sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("order sweeper stopped")
			return
		case <-ticker.C:
			if swept, err := s.SweepOnce(); err != nil {
				s.logger.WithError(err).Error("sweep pass failed")
			} else if swept > 0 {
				s.logger.WithField("swept", swept).Info("orphaned orders cancelled")
			}
		}
	}
}

// SweepOnce выполняет один проход: отменяет просроченные заказы-сироты и
// удаляет истёкшие ключи идемпотентности. Возвращает число отменённых заказов.
func (s *Sweeper) SweepOnce() (int, error) {
	cutoff := time.Now().Add(-s.grace)

	orphans, err := s.workflow.orders.ListWithoutLines(cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, orphan := range orphans {
		if orphan.Status != domain.OrderStatusPending {
			continue
		}
		order, err := s.workflow.UpdateStatus(orphan.ID, domain.OrderStatusCancelled, "swept: placement never completed")
		if err != nil {
			s.logger.WithError(err).WithField("order_id", orphan.ID).Error("failed to cancel orphaned order")
			continue
		}
		s.workflow.publishKafkaEvent(kafka.EventTypePlacementSwept, &order, map[string]interface{}{
			"created_at": orphan.CreatedAt.Format(time.RFC3339Nano),
		})
		swept++
	}

	if s.workflow.placements != nil {
		removed, err := s.workflow.placements.DeleteExpired(time.Now(), sweepBatchSize)
		if err != nil {
			s.logger.WithError(err).Error("failed to prune expired placement keys")
		} else if removed > 0 {
			s.logger.WithField("removed", removed).Debug("expired placement keys pruned")
		}
	}

	return swept, nil
}
