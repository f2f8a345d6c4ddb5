package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrFolium/KeeperShop-dBot/internal/clock"
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

func TestOrderService(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 4, 1, 15, 0, 0, 0, time.UTC)

	newSvc := func(opener *fakeOpener) (*OrderService, *CartService) {
		carts := NewCartService(newMemCarts())
		return NewOrderService(carts, opener, clock.NewFixed(now), nil), carts
	}

	input := OrderInput{
		BuyerID:   "u1",
		BuyerName: "Steve",
		Coords:    "120 64 -300",
		Dimension: "overworld",
		Username:  "steve_mc",
		Comment:   "после 18:00",
	}

	t.Run("checkout rejects an empty cart", func(t *testing.T) {
		svc, _ := newSvc(&fakeOpener{channelID: "ticket-1"})
		if err := svc.Checkout("u1"); !errors.Is(err, domain.ErrCartEmpty) {
			t.Fatalf("expected ErrCartEmpty, got %v", err)
		}
	})

	t.Run("submit composes the order and clears the cart", func(t *testing.T) {
		opener := &fakeOpener{channelID: "ticket-1"}
		svc, carts := newSvc(opener)
		if err := carts.Add("u1", "Меч", 80); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := carts.Add("u1", "Щит", 50); err != nil {
			t.Fatalf("add: %v", err)
		}

		order, channelID, err := svc.Submit(context.Background(), input)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if channelID != "ticket-1" {
			t.Fatalf("expected ticket channel, got %q", channelID)
		}
		if order.Ref == "" {
			t.Fatal("expected a non-empty order reference")
		}
		if order.Total != 130 || len(order.Lines) != 2 {
			t.Fatalf("unexpected order contents: %+v", order)
		}
		if !order.CreatedAt.Equal(now) {
			t.Fatalf("expected created at %v, got %v", now, order.CreatedAt)
		}
		if len(opener.orders) != 1 {
			t.Fatalf("expected 1 opened ticket, got %d", len(opener.orders))
		}
		if lines, _ := carts.View("u1"); len(lines) != 0 {
			t.Fatalf("expected cart cleared, got %v", lines)
		}
	})

	t.Run("submit with an emptied cart is rejected", func(t *testing.T) {
		svc, _ := newSvc(&fakeOpener{channelID: "ticket-1"})
		if _, _, err := svc.Submit(context.Background(), input); !errors.Is(err, domain.ErrCartEmpty) {
			t.Fatalf("expected ErrCartEmpty, got %v", err)
		}
	})

	t.Run("blank coordinates are rejected before the cart check", func(t *testing.T) {
		svc, _ := newSvc(&fakeOpener{channelID: "ticket-1"})
		in := input
		in.Coords = "   "
		if _, _, err := svc.Submit(context.Background(), in); !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("blank username is rejected", func(t *testing.T) {
		svc, _ := newSvc(&fakeOpener{channelID: "ticket-1"})
		in := input
		in.Username = ""
		if _, _, err := svc.Submit(context.Background(), in); !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("an opener failure leaves the cart untouched", func(t *testing.T) {
		opener := &fakeOpener{err: errStorage}
		svc, carts := newSvc(opener)
		if err := carts.Add("u1", "Меч", 80); err != nil {
			t.Fatalf("add: %v", err)
		}

		if _, _, err := svc.Submit(context.Background(), input); err == nil {
			t.Fatal("expected an error")
		}
		if lines, _ := carts.View("u1"); len(lines) != 1 {
			t.Fatalf("expected cart preserved, got %v", lines)
		}
	})
}
