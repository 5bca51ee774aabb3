package checkout_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
	"github.com/ARADHYA200/glow-shop-keeper/internal/ledger"
	"github.com/ARADHYA200/glow-shop-keeper/internal/service/checkout"
	"github.com/ARADHYA200/glow-shop-keeper/internal/storage/memory"
)

const (
	userID  = "user-1"
	phone   = "+7 900 000-00-00"
	address = "Москва, ул. Пушкина, д. 1"
)

type fixture struct {
	products   domain.ProductRepository
	carts      domain.CartRepository
	orders     domain.OrderRepository
	profiles   domain.ProfileRepository
	placements domain.PlacementRepository
	outbox     domain.OutboxRepository
	timeline   domain.TimelineRepository
	stock      *ledger.Ledger
	wf         *checkout.Workflow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		products:   memory.NewProductRepository(),
		carts:      memory.NewCartRepository(),
		orders:     memory.NewOrderRepository(),
		profiles:   memory.NewProfileRepository(),
		placements: memory.NewPlacementRepository(),
		outbox:     memory.NewOutboxRepository(),
		timeline:   memory.NewTimelineRepository(),
	}
	f.stock = ledger.New(f.products, nil, nil)
	f.wf = checkout.NewWorkflowWithoutMetrics(checkout.Deps{
		Carts:      f.carts,
		Products:   f.products,
		Orders:     f.orders,
		Profiles:   f.profiles,
		Placements: f.placements,
		Outbox:     f.outbox,
		Timeline:   f.timeline,
		Ledger:     f.stock,
	}, nil)
	return f
}

func (f *fixture) seedProduct(t *testing.T, id, name string, price int64, stock int32) {
	t.Helper()
	now := time.Now().UTC()
	err := f.products.Create(domain.Product{
		ID:            id,
		Name:          name,
		PriceMinor:    price,
		StockQuantity: stock,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
}

func (f *fixture) fillCart(t *testing.T, user string, lines map[string]int32) {
	t.Helper()
	cartID := "cart-" + user
	now := time.Now().UTC()
	err := f.carts.Create(domain.Cart{ID: cartID, UserID: user, CreatedAt: now, UpdatedAt: now})
	if err != nil && !errors.Is(err, domain.ErrCartAlreadyExists) {
		t.Fatalf("create cart: %v", err)
	}
	for productID, qty := range lines {
		err := f.carts.UpsertLine(cartID, domain.CartLine{
			ID:        "line-" + user + "-" + productID,
			ProductID: productID,
			Quantity:  qty,
			AddedAt:   now,
		})
		if err != nil {
			t.Fatalf("upsert cart line: %v", err)
		}
	}
}

func (f *fixture) stockOf(t *testing.T, productID string) int32 {
	t.Helper()
	product, err := f.products.Get(productID)
	if err != nil {
		t.Fatalf("get product %s: %v", productID, err)
	}
	return product.StockQuantity
}

func TestPlaceOrder_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 3})

	order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	// 3 × 1000 меньше порога бесплатной доставки, итог включает её стоимость.
	if order.TotalAmountMinor != 3099 {
		t.Fatalf("expected total 3099, got %d", order.TotalAmountMinor)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected status pending, got %s", order.Status)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 order line, got %d", len(order.Lines))
	}
	line := order.Lines[0]
	if line.ProductName != "Rose Glow Serum" || line.PriceMinor != 1000 || line.Qty != 3 {
		t.Fatalf("unexpected line snapshot: %+v", line)
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("stored order missing: %v", err)
	}
	if err := stored.ValidateInvariants(); err != nil {
		t.Fatalf("stored order violates invariants: %v", err)
	}

	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("expected stock 7 after placement, got %d", got)
	}

	cart, err := f.carts.GetByUser(userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected cart to be cleared, got %d lines", len(cart.Lines))
	}

	profile, err := f.profiles.Get(userID)
	if err != nil {
		t.Fatalf("expected delivery profile to be saved: %v", err)
	}
	if profile.Phone != phone || profile.Address != address {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	events, err := f.timeline.List(order.ID)
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	if len(events) != 1 || events[0].Type != "OrderPlaced" {
		t.Fatalf("expected single OrderPlaced timeline event, got %+v", events)
	}

	stats, err := f.outbox.Stats()
	if err != nil {
		t.Fatalf("outbox stats: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending outbox event, got %d", stats.PendingCount)
	}
}

func TestPlaceOrder_FreeShippingBoundary(t *testing.T) {
	tests := []struct {
		name      string
		price     int64
		wantTotal int64
	}{
		{"at threshold still pays shipping", 5000, 5099},
		{"above threshold ships free", 5001, 5001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedProduct(t, "kit", "Glow Kit", tt.price, 5)
			f.fillCart(t, userID, map[string]int32{"kit": 1})

			order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
			if err != nil {
				t.Fatalf("place order failed: %v", err)
			}
			if order.TotalAmountMinor != tt.wantTotal {
				t.Fatalf("expected total %d, got %d", tt.wantTotal, order.TotalAmountMinor)
			}
		})
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		phone   string
		address string
		setup   func(t *testing.T, f *fixture)
		wantErr error
	}{
		{
			name:    "anonymous user",
			user:    "",
			phone:   phone,
			address: address,
			wantErr: domain.ErrNotAuthenticated,
		},
		{
			name:    "blank phone",
			user:    userID,
			phone:   "   ",
			address: address,
			wantErr: domain.ErrPhoneRequired,
		},
		{
			name:    "blank address",
			user:    userID,
			phone:   phone,
			address: "",
			wantErr: domain.ErrAddressRequired,
		},
		{
			name:    "no cart at all",
			user:    userID,
			phone:   phone,
			address: address,
			wantErr: domain.ErrEmptyCart,
		},
		{
			name:    "cart without lines",
			user:    userID,
			phone:   phone,
			address: address,
			setup: func(t *testing.T, f *fixture) {
				f.fillCart(t, userID, nil)
			},
			wantErr: domain.ErrEmptyCart,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			_, err := f.wf.PlaceOrder(tt.user, checkout.PlaceOrderRequest{Phone: tt.phone, Address: tt.address})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPlaceOrder_InsufficientStockIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 5)
	f.seedProduct(t, "mask", "Night Mask", 2000, 1)
	f.fillCart(t, userID, map[string]int32{"serum": 2, "mask": 3})

	_, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.ProductID != "mask" || insufficient.Requested != 3 || insufficient.Available != 1 {
		t.Fatalf("unexpected error details: %+v", insufficient)
	}

	// Ни одной строки заказа, корзина и остатки нетронуты.
	orders, err := f.orders.ListByUser(userID, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
	cart, err := f.carts.GetByUser(userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected cart untouched with 2 lines, got %d", len(cart.Lines))
	}
	if got := f.stockOf(t, "serum"); got != 5 {
		t.Fatalf("expected serum stock 5, got %d", got)
	}
	if got := f.stockOf(t, "mask"); got != 1 {
		t.Fatalf("expected mask stock 1, got %d", got)
	}
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 1)
	f.fillCart(t, "user-a", map[string]int32{"serum": 1})
	f.fillCart(t, "user-b", map[string]int32{"serum": 1})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []string{"user-a", "user-b"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = f.wf.PlaceOrder(user, checkout.PlaceOrderRequest{Phone: phone, Address: address})
		}(i, user)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !domain.IsInsufficientStock(err) {
			t.Fatalf("loser must fail with insufficient stock, got %v", err)
		}
	}
	// Ровно один checkout забирает последнюю единицу.
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful placement, got %d", succeeded)
	}
	if got := f.stockOf(t, "serum"); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestPlaceOrder_SnapshotSurvivesCatalogEdits(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 2})

	order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	product, err := f.products.Get("serum")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	product.Name = "Renamed Serum"
	product.PriceMinor = 9999
	if err := f.products.Save(product); err != nil {
		t.Fatalf("save product: %v", err)
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	line := stored.Lines[0]
	if line.ProductName != "Rose Glow Serum" || line.PriceMinor != 1000 {
		t.Fatalf("order line must keep the snapshot, got %+v", line)
	}
	if stored.TotalAmountMinor != order.TotalAmountMinor {
		t.Fatalf("order total changed after catalog edit: %d != %d", stored.TotalAmountMinor, order.TotalAmountMinor)
	}
}

func TestPlaceOrder_IdempotentRetry(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 3})

	req := checkout.PlaceOrderRequest{Phone: phone, Address: address, IdempotencyKey: "retry-1"}
	first, err := f.wf.PlaceOrder(userID, req)
	if err != nil {
		t.Fatalf("first placement failed: %v", err)
	}

	// Повтор приходит уже после очистки корзины и обязан вернуть тот же заказ.
	second, err := f.wf.PlaceOrder(userID, req)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("retry created a different order: %s != %s", second.ID, first.ID)
	}

	orders, err := f.orders.ListByUser(userID, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected exactly 1 order, got %d", len(orders))
	}
	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("stock must be decremented once, got %d", got)
	}
}

// flakyOrderRepo отказывает в записи первых N позиций, имитируя сбой backend
// между заголовком заказа и его позициями.
type flakyOrderRepo struct {
	domain.OrderRepository
	failures int
}

func (r *flakyOrderRepo) CreateLine(line domain.OrderLine) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("storage unavailable")
	}
	return r.OrderRepository.CreateLine(line)
}

func TestPlaceOrder_ResumeAfterLineFailure(t *testing.T) {
	f := newFixture(t)
	flaky := &flakyOrderRepo{OrderRepository: f.orders, failures: 1}
	f.wf = checkout.NewWorkflowWithoutMetrics(checkout.Deps{
		Carts:      f.carts,
		Products:   f.products,
		Orders:     flaky,
		Profiles:   f.profiles,
		Placements: f.placements,
		Outbox:     f.outbox,
		Timeline:   f.timeline,
		Ledger:     f.stock,
	}, nil)

	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 3})

	req := checkout.PlaceOrderRequest{Phone: phone, Address: address, IdempotencyKey: "resume-1"}
	_, err := f.wf.PlaceOrder(userID, req)
	if err == nil {
		t.Fatal("expected placement to fail at the lines step")
	}
	incomplete, ok := domain.AsPlacementIncomplete(err)
	if !ok {
		t.Fatalf("expected PlacementIncompleteError, got %v", err)
	}
	if incomplete.Step != domain.CheckoutStepLines {
		t.Fatalf("expected failure at lines step, got %s", incomplete.Step)
	}

	// Заголовок записан, позиций нет, резерв удержан, корзина не тронута.
	header, err := f.orders.Get(incomplete.OrderID)
	if err != nil {
		t.Fatalf("order header must exist: %v", err)
	}
	if len(header.Lines) != 0 {
		t.Fatalf("expected no lines yet, got %d", len(header.Lines))
	}
	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("reserve must be held across the failure, got stock %d", got)
	}
	cart, err := f.carts.GetByUser(userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("cart must survive the failure, got %d lines", len(cart.Lines))
	}

	// Повтор с тем же ключом дописывает позиции того же заказа.
	order, err := f.wf.PlaceOrder(userID, req)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if order.ID != incomplete.OrderID {
		t.Fatalf("resume must reuse the order: %s != %s", order.ID, incomplete.OrderID)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 line after resume, got %d", len(order.Lines))
	}
	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("resume must not reserve twice, got stock %d", got)
	}
	cart, err = f.carts.GetByUser(userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("cart must be cleared after resume, got %d lines", len(cart.Lines))
	}
}

func TestAdjustStock_EmitsEvent(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 5)

	newStock, err := f.wf.AdjustStock("serum", 3)
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if newStock != 8 {
		t.Fatalf("expected stock 8, got %d", newStock)
	}

	// Отрицательный итог прижимается к нулю, событие уходит и в этом случае.
	newStock, err = f.wf.AdjustStock("serum", -100)
	if err != nil {
		t.Fatalf("adjust stock below zero: %v", err)
	}
	if newStock != 0 {
		t.Fatalf("expected stock floored at 0, got %d", newStock)
	}

	pending, err := f.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 stock events in outbox, got %d", len(pending))
	}
	for _, msg := range pending {
		if msg.EventType != "StockAdjusted" {
			t.Fatalf("expected StockAdjusted event, got %s", msg.EventType)
		}
		if msg.AggregateType != "product" || msg.AggregateID != "serum" {
			t.Fatalf("unexpected aggregate: %s/%s", msg.AggregateType, msg.AggregateID)
		}
	}
}

func TestPlaceOrder_ResumeIgnoresCartMutation(t *testing.T) {
	f := newFixture(t)
	flaky := &flakyOrderRepo{OrderRepository: f.orders, failures: 1}
	f.wf = checkout.NewWorkflowWithoutMetrics(checkout.Deps{
		Carts:      f.carts,
		Products:   f.products,
		Orders:     flaky,
		Profiles:   f.profiles,
		Placements: f.placements,
		Outbox:     f.outbox,
		Timeline:   f.timeline,
		Ledger:     f.stock,
	}, nil)

	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 3})

	req := checkout.PlaceOrderRequest{Phone: phone, Address: address, IdempotencyKey: "resume-2"}
	_, err := f.wf.PlaceOrder(userID, req)
	incomplete, ok := domain.AsPlacementIncomplete(err)
	if !ok {
		t.Fatalf("expected PlacementIncompleteError, got %v", err)
	}
	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("reserve must be held across the failure, got stock %d", got)
	}

	// Между сбоем и повтором корзина и цена меняются: пользователь накинул
	// количество, админ поднял цену. Резерв при этом взят под 3 штуки по
	// старой цене.
	f.fillCart(t, userID, map[string]int32{"serum": 8})
	product, err := f.products.Get("serum")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	product.PriceMinor = 2000
	if err := f.products.Save(product); err != nil {
		t.Fatalf("save product: %v", err)
	}

	order, err := f.wf.PlaceOrder(userID, req)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if order.ID != incomplete.OrderID {
		t.Fatalf("resume must reuse the order: %s != %s", order.ID, incomplete.OrderID)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(order.Lines))
	}
	if order.Lines[0].Qty != 3 {
		t.Fatalf("resume must write the reserved quantity, got %d", order.Lines[0].Qty)
	}
	if order.Lines[0].PriceMinor != 1000 {
		t.Fatalf("resume must keep the snapshot price, got %d", order.Lines[0].PriceMinor)
	}
	if order.TotalAmountMinor != 3099 {
		t.Fatalf("resume total must match the committed header, got %d", order.TotalAmountMinor)
	}
	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("resume must not touch stock, got %d", got)
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get stored order: %v", err)
	}
	if stored.TotalAmountMinor != order.TotalAmountMinor {
		t.Fatalf("returned total %d diverges from stored %d", order.TotalAmountMinor, stored.TotalAmountMinor)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 1})

	order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		updated, err := f.wf.UpdateStatus(order.ID, next, "")
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected status %s, got %s", next, updated.Status)
		}
	}

	// Доставленный заказ уже не отменить.
	if _, err := f.wf.UpdateStatus(order.ID, domain.OrderStatusCancelled, ""); !errors.Is(err, domain.ErrStatusTransition) {
		t.Fatalf("expected ErrStatusTransition, got %v", err)
	}
	if _, err := f.wf.UpdateStatus(order.ID, "misplaced", ""); !errors.Is(err, domain.ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
	if _, err := f.wf.UpdateStatus("missing", domain.OrderStatusProcessing, ""); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	// Повторный перевод в текущий статус идемпотентен.
	if _, err := f.wf.UpdateStatus(order.ID, domain.OrderStatusDelivered, ""); err != nil {
		t.Fatalf("same-status update must be a no-op, got %v", err)
	}
}

func TestCancel_ReleasesStock(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 3})

	order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if got := f.stockOf(t, "serum"); got != 7 {
		t.Fatalf("expected stock 7 after placement, got %d", got)
	}

	cancelled, err := f.wf.Cancel(userID, order.ID, "changed my mind")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if got := f.stockOf(t, "serum"); got != 10 {
		t.Fatalf("cancellation must release stock, got %d", got)
	}

	events, err := f.timeline.List(order.ID)
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	var sawCancelled bool
	for _, event := range events {
		if event.Type == "OrderCancelled" {
			sawCancelled = true
			if event.Reason != "changed my mind" {
				t.Fatalf("expected cancellation reason in timeline, got %q", event.Reason)
			}
		}
	}
	if !sawCancelled {
		t.Fatal("expected OrderCancelled timeline event")
	}
}

func TestCancel_Ownership(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 1})

	order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := f.wf.Cancel("", order.ID, ""); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	// Чужой заказ выглядит как несуществующий.
	if _, err := f.wf.Cancel("user-2", order.ID, ""); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetOrder_HidesForeignOrders(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)
	f.fillCart(t, userID, map[string]int32{"serum": 1})

	order, err := f.wf.PlaceOrder(userID, checkout.PlaceOrderRequest{Phone: phone, Address: address})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := f.wf.GetOrder(userID, order.ID); err != nil {
		t.Fatalf("owner must see the order: %v", err)
	}
	if _, err := f.wf.GetOrder("user-2", order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.wf.ListOrders("", 0); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSweeper_CancelsOrphanedOrders(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "serum", "Rose Glow Serum", 1000, 10)

	stale := time.Now().UTC().Add(-time.Hour)
	orphan := domain.Order{
		ID:               "orphan-1",
		UserID:           userID,
		Status:           domain.OrderStatusPending,
		TotalAmountMinor: 1099,
		ShippingAddress:  address,
		Phone:            phone,
		CreatedAt:        stale,
		UpdatedAt:        stale,
	}
	if err := f.orders.CreateHeader(orphan); err != nil {
		t.Fatalf("create orphan header: %v", err)
	}

	// Свежий заголовок ещё в льготном периоде и не должен быть отменён.
	recent := orphan
	recent.ID = "recent-1"
	recent.CreatedAt = time.Now().UTC()
	recent.UpdatedAt = recent.CreatedAt
	if err := f.orders.CreateHeader(recent); err != nil {
		t.Fatalf("create recent header: %v", err)
	}

	sweeper := checkout.NewSweeper(f.wf, time.Minute, 10*time.Minute, nil)
	swept, err := sweeper.SweepOnce()
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept order, got %d", swept)
	}

	got, err := f.orders.Get("orphan-1")
	if err != nil {
		t.Fatalf("get orphan: %v", err)
	}
	if got.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected orphan cancelled, got %s", got.Status)
	}
	got, err = f.orders.Get("recent-1")
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("recent order must stay pending, got %s", got.Status)
	}
}
