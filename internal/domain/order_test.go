package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestOrderStatusTransitions(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}

	legal := map[OrderStatus]map[OrderStatus]bool{
		OrderStatusPending:   {OrderStatusConfirmed: true, OrderStatusCancelled: true},
		OrderStatusConfirmed: {OrderStatusShipped: true, OrderStatusCancelled: true},
		OrderStatusShipped:   {OrderStatusDelivered: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: CanTransitionTo = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("%s should be a valid status", s)
		}
	}

	for _, s := range []OrderStatus{"", "unknown", "PENDING"} {
		if s.Valid() {
			t.Errorf("%q should not be a valid status", s)
		}
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{
		PriceAtPurchase: decimal.RequireFromString("5.50"),
		Quantity:        3,
	}
	if !item.Subtotal().Equal(decimal.RequireFromString("16.50")) {
		t.Errorf("subtotal = %s, want 16.50", item.Subtotal())
	}
}

func TestProductOwnedBy(t *testing.T) {
	ownerID := uuid.New()

	owned := &Product{OwnerID: &ownerID}
	if !owned.OwnedBy(ownerID) {
		t.Error("owner not recognized")
	}
	if owned.OwnedBy(uuid.New()) {
		t.Error("stranger recognized as owner")
	}

	unowned := &Product{}
	if unowned.OwnedBy(ownerID) {
		t.Error("ownerless product claimed an owner")
	}
}
