package app

import (
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// CartStore is the per-user cart document as the service needs it.
type CartStore interface {
	Append(userID string, line domain.CartLine) error
	RemoveFirst(userID, name string) (bool, error)
	Clear(userID string) error
	Lines(userID string) []domain.CartLine
	TakeAndClear(userID string) ([]domain.CartLine, error)
}

// CartService manages per-user carts of name/price snapshots.
type CartService struct {
	carts CartStore
}

func NewCartService(carts CartStore) *CartService {
	return &CartService{carts: carts}
}

// Add appends a snapshot of the item's name and effective price. The
// line keeps that price even if the catalog changes later.
func (s *CartService) Add(userID string, name string, price int) error {
	return s.carts.Append(userID, domain.CartLine{Name: name, Price: price})
}

// Remove drops the first line matching name; a cart without such a line
// reports ErrCartLineNotFound.
func (s *CartService) Remove(userID, name string) error {
	removed, err := s.carts.RemoveFirst(userID, name)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrCartLineNotFound
	}
	return nil
}

func (s *CartService) Clear(userID string) error {
	return s.carts.Clear(userID)
}

// View returns the lines and their total without mutating the cart.
func (s *CartService) View(userID string) ([]domain.CartLine, int) {
	lines := s.carts.Lines(userID)
	return lines, domain.CartTotal(lines)
}

func (s *CartService) TakeAndClear(userID string) ([]domain.CartLine, error) {
	return s.carts.TakeAndClear(userID)
}
