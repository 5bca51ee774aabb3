package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/storage/memory"
)

func newOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:               "order-1",
		UserID:           "user-1",
		Status:           domain.OrderStatusPending,
		TotalAmountMinor: 1099,
		ShippingAddress:  "A",
		Phone:            "+911234567890",
		Version:          0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func newLine(orderID, lineID string) domain.OrderLine {
	return domain.OrderLine{
		ID:          lineID,
		OrderID:     orderID,
		ProductID:   "product-1",
		ProductName: "Rose Glow Serum",
		Qty:         1,
		PriceMinor:  1000,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestOrderRepository_CreateHeaderGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()

	if err := repo.CreateHeader(order); err != nil {
		t.Fatalf("create header failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if len(stored.Lines) != 0 {
		t.Fatalf("fresh header must have no lines, got %d", len(stored.Lines))
	}

	if err := repo.CreateHeader(order); !errors.Is(err, domain.ErrOrderAlreadyExists) {
		t.Fatalf("expected ErrOrderAlreadyExists, got %v", err)
	}
}

func TestOrderRepository_CreateLineIdempotent(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.CreateHeader(order); err != nil {
		t.Fatalf("create header failed: %v", err)
	}

	line := newLine(order.ID, "line-1")
	if err := repo.CreateLine(line); err != nil {
		t.Fatalf("create line failed: %v", err)
	}
	// Повторная запись той же позиции — no-op, не дубликат.
	if err := repo.CreateLine(line); err != nil {
		t.Fatalf("repeated create line failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(stored.Lines))
	}

	if err := repo.CreateLine(newLine("order-404", "line-x")); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByUser(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.CreateHeader(order); err != nil {
		t.Fatalf("create header failed: %v", err)
	}

	orders, err := repo.ListByUser(order.UserID, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	orders, err = repo.ListByUser("user-404", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders for unknown user, got %d", len(orders))
	}
}

func TestOrderRepository_ListWithoutLines(t *testing.T) {
	repo := memory.NewOrderRepository()

	orphan := newOrder()
	orphan.ID = "order-orphan"
	orphan.CreatedAt = time.Now().UTC().Add(-time.Hour)
	if err := repo.CreateHeader(orphan); err != nil {
		t.Fatalf("create orphan failed: %v", err)
	}

	complete := newOrder()
	complete.ID = "order-complete"
	complete.CreatedAt = time.Now().UTC().Add(-time.Hour)
	if err := repo.CreateHeader(complete); err != nil {
		t.Fatalf("create complete failed: %v", err)
	}
	if err := repo.CreateLine(newLine(complete.ID, "line-1")); err != nil {
		t.Fatalf("create line failed: %v", err)
	}

	fresh := newOrder()
	fresh.ID = "order-fresh"
	fresh.CreatedAt = time.Now().UTC()
	if err := repo.CreateHeader(fresh); err != nil {
		t.Fatalf("create fresh failed: %v", err)
	}

	orphans, err := repo.ListWithoutLines(time.Now().UTC().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("list without lines failed: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != "order-orphan" {
		t.Fatalf("expected exactly the stale orphan, got %+v", orphans)
	}
}

func TestOrderRepository_Save(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.CreateHeader(order); err != nil {
		t.Fatalf("create header failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	stored.Status = domain.OrderStatusProcessing
	if err := repo.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected status processing, got %s", updated.Status)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder()
	if err := repo.CreateHeader(order); err != nil {
		t.Fatalf("create header failed: %v", err)
	}

	order.Version = 42
	if err := repo.Save(order); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict error, got %v", err)
	}
}
