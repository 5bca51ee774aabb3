package kafka

import (
	"encoding/json"
	"testing"
)

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderPlaced, "order-1", "user-1", "pending", map[string]interface{}{
		"total": int64(3099),
	})

	if event.EventType != EventTypeOrderPlaced {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.OrderID != "order-1" || event.UserID != "user-1" || event.Status != "pending" {
		t.Fatalf("unexpected payload: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["event_type"] != "order.placed" {
		t.Fatalf("unexpected wire event_type: %v", decoded["event_type"])
	}
}

func TestNewStockEvent(t *testing.T) {
	event := NewStockEvent("product-1", -1, 4)

	if event.EventType != EventTypeStockAdjusted {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.ProductID != "product-1" || event.Delta != -1 || event.Stock != 4 {
		t.Fatalf("unexpected payload: %+v", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["product_id"] != "product-1" {
		t.Fatalf("unexpected wire product_id: %v", decoded["product_id"])
	}
}
