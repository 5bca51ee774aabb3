package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/ledger"
	"github.com/ARADHYA200/glow-shop-keeper/internal/metrics"
	"github.com/ARADHYA200/glow-shop-keeper/internal/storage/memory"
	"github.com/ARADHYA200/glow-shop-keeper/internal/storage/postgres"
)

// Dependencies содержит репозитории и ledger витрины.
type Dependencies struct {
	Products   domain.ProductRepository
	Carts      domain.CartRepository
	Orders     domain.OrderRepository
	Profiles   domain.ProfileRepository
	Placements domain.PlacementRepository
	Outbox     domain.OutboxRepository
	Timeline   domain.TimelineRepository
	Ledger     domain.StockReserver

	// Store не nil только при работе поверх PostgreSQL.
	Store *postgres.Store
}

// buildDependencies выбирает хранилище по конфигурации: пустой DSN —
// in-memory (демо и тесты), иначе PostgreSQL с применением миграций.
func buildDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN is empty, using in-memory storage")
		deps := &Dependencies{
			Products:   memory.NewProductRepository(),
			Carts:      memory.NewCartRepository(),
			Orders:     memory.NewOrderRepository(),
			Profiles:   memory.NewProfileRepository(),
			Placements: memory.NewPlacementRepository(),
			Outbox:     memory.NewOutboxRepository(),
			Timeline:   memory.NewTimelineRepository(),
		}
		deps.Ledger = ledger.New(deps.Products, metrics.NewCheckoutMetrics(), logger.WithField("component", "ledger"))
		return deps, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("postgres storage initialized")

	deps := &Dependencies{
		Products:   postgres.NewProductRepository(store),
		Carts:      postgres.NewCartRepository(store),
		Orders:     postgres.NewOrderRepository(store),
		Profiles:   postgres.NewProfileRepository(store),
		Placements: postgres.NewPlacementRepository(store),
		Outbox:     postgres.NewOutboxRepository(store),
		Timeline:   postgres.NewTimelineRepository(store),
		Store:      store,
	}
	deps.Ledger = ledger.New(deps.Products, metrics.NewCheckoutMetrics(), logger.WithField("component", "ledger"))
	return deps, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close(logger *log.Entry) {
	if d == nil || d.Store == nil {
		return
	}
	if err := d.Store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}
