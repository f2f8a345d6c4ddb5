package jsonfile

import (
	"fmt"
	"sync"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

const cartsFile = "user_carts.json"

// CartRepository owns the per-user cart document, a JSON object keyed
// by user id.
type CartRepository struct {
	store *Store

	mu    sync.Mutex
	carts map[string][]domain.CartLine
}

func NewCartRepository(store *Store) (*CartRepository, error) {
	r := &CartRepository{
		store: store,
		carts: map[string][]domain.CartLine{},
	}
	if err := store.Load(cartsFile, &r.carts); err != nil {
		return nil, err
	}
	if r.carts == nil {
		r.carts = map[string][]domain.CartLine{}
	}
	return r, nil
}

func (r *CartRepository) save() error {
	if err := r.store.Save(cartsFile, r.carts); err != nil {
		return fmt.Errorf("save carts: %w", err)
	}
	return nil
}

// Append adds a snapshot line to the user's cart, creating the cart if
// absent.
func (r *CartRepository) Append(userID string, line domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = append(r.carts[userID], line)
	if err := r.save(); err != nil {
		lines := r.carts[userID]
		r.carts[userID] = lines[:len(lines)-1]
		return err
	}
	return nil
}

// RemoveFirst removes the first line whose name matches and reports
// whether one was found. The document is only rewritten on an actual
// removal.
func (r *CartRepository) RemoveFirst(userID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.carts[userID]
	for i, line := range lines {
		if line.Name == name {
			r.carts[userID] = append(lines[:i], lines[i+1:]...)
			if err := r.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *CartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[userID] = []domain.CartLine{}
	return r.save()
}

// Lines returns a copy of the user's cart.
func (r *CartRepository) Lines(userID string) []domain.CartLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.carts[userID]
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

// TakeAndClear returns the current lines and empties the cart under one
// lock acquisition, so no reader observes a half-cleared cart.
func (r *CartRepository) TakeAndClear(userID string) ([]domain.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.carts[userID]
	r.carts[userID] = []domain.CartLine{}
	if err := r.save(); err != nil {
		r.carts[userID] = lines
		return nil, err
	}
	return lines, nil
}
