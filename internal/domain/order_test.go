package domain_test

import (
	"testing"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:               "order-1",
		UserID:           "user-1",
		Status:           domain.OrderStatusPending,
		TotalAmountMinor: 3099,
		ShippingAddress:  "221B Baker Street",
		Phone:            "+911234567890",
		Lines: []domain.OrderLine{
			{
				ID:          "line-1",
				OrderID:     "order-1",
				ProductID:   "product-1",
				ProductName: "Rose Glow Serum",
				Qty:         3,
				PriceMinor:  1000,
				CreatedAt:   now,
			},
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no user",
			mut: func(o *domain.Order) {
				o.UserID = ""
			},
		},
		{
			name: "no phone",
			mut: func(o *domain.Order) {
				o.Phone = ""
			},
		},
		{
			name: "no address",
			mut: func(o *domain.Order) {
				o.ShippingAddress = ""
			},
		},
		{
			name: "no lines",
			mut: func(o *domain.Order) {
				o.Lines = nil
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Lines[0].Qty = 0
			},
		},
		{
			name: "price invalid",
			mut: func(o *domain.Order) {
				o.Lines[0].PriceMinor = -5
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalAmountMinor = 9999
			},
		},
		{
			name: "unknown status",
			mut: func(o *domain.Order) {
				o.Status = "archived"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestShippingFor(t *testing.T) {
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{subtotal: 0, want: 99},
		{subtotal: 3000, want: 99},
		// Ровно на пороге доставка остаётся платной: проверка строго больше.
		{subtotal: 5000, want: 99},
		{subtotal: 5001, want: 0},
		{subtotal: 120000, want: 0},
	}

	for _, tc := range cases {
		if got := domain.ShippingFor(tc.subtotal); got != tc.want {
			t.Fatalf("ShippingFor(%d) = %d, want %d", tc.subtotal, got, tc.want)
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderStatusPending:    {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
		domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
		domain.OrderStatusShipped:    {domain.OrderStatusDelivered},
		domain.OrderStatusDelivered:  {},
		domain.OrderStatusCancelled:  {},
	}

	statuses := []domain.OrderStatus{
		domain.OrderStatusPending, domain.OrderStatusProcessing,
		domain.OrderStatusShipped, domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	}

	for from, nexts := range allowed {
		ok := make(map[domain.OrderStatus]bool, len(nexts))
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range statuses {
			if got := from.CanTransitionTo(to); got != ok[to] {
				t.Fatalf("%s -> %s: got %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !domain.OrderStatusDelivered.Terminal() {
		t.Fatal("delivered must be terminal")
	}
	if !domain.OrderStatusCancelled.Terminal() {
		t.Fatal("cancelled must be terminal")
	}
	if domain.OrderStatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
}
