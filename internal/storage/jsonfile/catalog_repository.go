package jsonfile

import (
	"fmt"
	"sync"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

const catalogFile = "shop_data.json"

// CatalogRepository owns the shop item document, an ordered JSON array.
type CatalogRepository struct {
	store *Store

	mu    sync.Mutex
	items []domain.CatalogItem
}

// NewCatalogRepository loads the document, normalizes legacy entries
// (missing id or discount fields from older bot versions) and rewrites
// the normalized form.
func NewCatalogRepository(store *Store) (*CatalogRepository, error) {
	r := &CatalogRepository{store: store}
	if err := store.Load(catalogFile, &r.items); err != nil {
		return nil, err
	}
	for i := range r.items {
		if r.items[i].ID == 0 {
			r.items[i].ID = i + 1
		}
		if r.items[i].Discount < 0 {
			r.items[i].Discount = 0
		}
	}
	if err := r.save(); err != nil {
		return nil, err
	}
	return r, nil
}

// save renumbers every item id to its 1-based list position before
// writing, so ids always read {1..N} in catalog order.
func (r *CatalogRepository) save() error {
	for i := range r.items {
		r.items[i].ID = i + 1
	}
	if err := r.store.Save(catalogFile, r.items); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// List returns the items in insertion order.
func (r *CatalogRepository) List() []domain.CatalogItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CatalogItem, len(r.items))
	copy(out, r.items)
	return out
}

func (r *CatalogRepository) Get(id int) (domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.CatalogItem{}, domain.ErrItemNotFound
}

// Insert assigns the next id, appends and persists.
func (r *CatalogRepository) Insert(item domain.CatalogItem) (domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := 0
	for _, existing := range r.items {
		if existing.ID > next {
			next = existing.ID
		}
	}
	item.ID = next + 1
	r.items = append(r.items, item)
	if err := r.save(); err != nil {
		r.items = r.items[:len(r.items)-1]
		return domain.CatalogItem{}, err
	}
	return item, nil
}

// Update replaces the item with the same id in place.
func (r *CatalogRepository) Update(item domain.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == item.ID {
			prev := r.items[i]
			r.items[i] = item
			if err := r.save(); err != nil {
				r.items[i] = prev
				return err
			}
			return nil
		}
	}
	return domain.ErrItemNotFound
}

func (r *CatalogRepository) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return r.save()
		}
	}
	return domain.ErrItemNotFound
}
