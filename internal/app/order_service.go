package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrFolium/KeeperShop-dBot/internal/clock"
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// OrderTicketOpener creates the private order channel and posts the
// summary plus the fixed notices. It returns the channel id only after
// everything the buyer must not lose has been rendered.
type OrderTicketOpener interface {
	OpenTicket(ctx context.Context, order domain.Order) (channelID string, err error)
}

// OrderService drives checkout: cart gate, delivery form, ticket
// channel, then cart clear.
type OrderService struct {
	carts  *CartService
	opener OrderTicketOpener
	clock  clock.Clock
	logger *slog.Logger
}

func NewOrderService(carts *CartService, opener OrderTicketOpener, clk clock.Clock, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{carts: carts, opener: opener, clock: clk, logger: logger}
}

// Checkout gates the delivery form: an empty cart is rejected before
// the buyer is shown anything to fill in.
func (s *OrderService) Checkout(userID string) error {
	if lines, _ := s.carts.View(userID); len(lines) == 0 {
		return domain.ErrCartEmpty
	}
	return nil
}

// OrderInput carries the delivery form fields.
type OrderInput struct {
	BuyerID   string
	BuyerName string
	Coords    string
	Dimension string
	Username  string
	Comment   string
}

// Submit re-checks the cart (it may have changed since Checkout),
// composes the order from a snapshot of the lines, opens the ticket
// channel and clears the cart only once the channel and summary exist.
// An opener failure leaves the cart untouched.
func (s *OrderService) Submit(ctx context.Context, in OrderInput) (domain.Order, string, error) {
	if strings.TrimSpace(in.Coords) == "" {
		return domain.Order{}, "", domain.Invalid("coords", "координаты не могут быть пустыми")
	}
	if strings.TrimSpace(in.Username) == "" {
		return domain.Order{}, "", domain.Invalid("username", "ник не может быть пустым")
	}

	lines, total := s.carts.View(in.BuyerID)
	if len(lines) == 0 {
		return domain.Order{}, "", domain.ErrCartEmpty
	}

	order := domain.Order{
		Ref:       uuid.NewString(),
		BuyerID:   in.BuyerID,
		BuyerName: in.BuyerName,
		Coords:    strings.TrimSpace(in.Coords),
		Dimension: strings.TrimSpace(in.Dimension),
		Username:  strings.TrimSpace(in.Username),
		Comment:   strings.TrimSpace(in.Comment),
		Lines:     lines,
		Total:     total,
		CreatedAt: s.clock.Now(),
	}

	channelID, err := s.opener.OpenTicket(ctx, order)
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("open order ticket: %w", err)
	}

	if _, err := s.carts.TakeAndClear(in.BuyerID); err != nil {
		// The ticket exists and the order is placed; a failed cart
		// write must not fail the submission.
		s.logger.Error("clear cart after order", "buyer", in.BuyerID, "order", order.Ref, "error", err)
	}

	return order, channelID, nil
}
