package app

import (
	"context"
	"errors"
	"testing"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

func newCatalogSvc(catalog *memCatalog, known ...string) (*CatalogService, *countingPublisher) {
	resolver := staticResolver{known: map[string]bool{}}
	for _, id := range known {
		resolver.known[id] = true
	}
	pub := &countingPublisher{}
	return NewCatalogService(catalog, resolver, pub, nil), pub
}

func TestCatalogService_Create(t *testing.T) {
	t.Parallel()

	t.Run("valid input inserts and republishes", func(t *testing.T) {
		catalog := &memCatalog{}
		svc, pub := newCatalogSvc(catalog, "555")

		item, err := svc.Create(context.Background(), ItemInput{
			Name:            "  Меч  ",
			Price:           "100",
			Discount:        "20",
			Description:     "острый",
			ImageAndChannel: "https://img.example/sword.png | 555",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if item.ID != 1 || item.Name != "Меч" || item.Price != 100 || item.Discount != 20 {
			t.Fatalf("unexpected item: %+v", item)
		}
		if item.Image != "https://img.example/sword.png" || item.ChannelID != "555" {
			t.Fatalf("unexpected routing fields: %+v", item)
		}
		if pub.calls != 1 {
			t.Fatalf("expected 1 republish, got %d", pub.calls)
		}
	})

	t.Run("discount equal to price is rejected and the catalog is untouched", func(t *testing.T) {
		catalog := &memCatalog{}
		svc, pub := newCatalogSvc(catalog)

		_, err := svc.Create(context.Background(), ItemInput{Name: "Меч", Price: "100", Discount: "100"})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(catalog.items) != 0 {
			t.Fatalf("expected empty catalog, got %d items", len(catalog.items))
		}
		if pub.calls != 0 {
			t.Fatalf("expected no republish, got %d", pub.calls)
		}
	})

	t.Run("non-numeric price is rejected", func(t *testing.T) {
		svc, _ := newCatalogSvc(&memCatalog{})
		_, err := svc.Create(context.Background(), ItemInput{Name: "Меч", Price: "сто"})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		svc, _ := newCatalogSvc(&memCatalog{})
		_, err := svc.Create(context.Background(), ItemInput{Name: "   ", Price: "100"})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown channel id is rejected", func(t *testing.T) {
		svc, _ := newCatalogSvc(&memCatalog{})
		_, err := svc.Create(context.Background(), ItemInput{
			Name:            "Меч",
			Price:           "100",
			ImageAndChannel: "img.png | 999",
		})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("non-numeric channel id is rejected", func(t *testing.T) {
		svc, _ := newCatalogSvc(&memCatalog{})
		_, err := svc.Create(context.Background(), ItemInput{
			Name:            "Меч",
			Price:           "100",
			ImageAndChannel: "img.png | general",
		})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestSplitImageAndChannel(t *testing.T) {
	t.Parallel()

	t.Run("no separator means the whole value is the image", func(t *testing.T) {
		image, channel, err := splitImageAndChannel("https://img.example/a.png")
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		if image != "https://img.example/a.png" || channel != "" {
			t.Fatalf("got image=%q channel=%q", image, channel)
		}
	})

	t.Run("channel part of none clears the override", func(t *testing.T) {
		image, channel, err := splitImageAndChannel("a.png | none")
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		if image != "a.png" || channel != "" {
			t.Fatalf("got image=%q channel=%q", image, channel)
		}
	})

	t.Run("empty channel part clears the override", func(t *testing.T) {
		image, channel, err := splitImageAndChannel("a.png | ")
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		if image != "a.png" || channel != "" {
			t.Fatalf("got image=%q channel=%q", image, channel)
		}
	})

	t.Run("numeric channel part is kept", func(t *testing.T) {
		image, channel, err := splitImageAndChannel("a.png | 123456789")
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		if image != "a.png" || channel != "123456789" {
			t.Fatalf("got image=%q channel=%q", image, channel)
		}
	})
}

func TestCatalogService_UpdateDelete(t *testing.T) {
	t.Parallel()

	t.Run("update of a missing item surfaces ErrItemNotFound", func(t *testing.T) {
		svc, _ := newCatalogSvc(&memCatalog{})
		_, err := svc.Update(context.Background(), 7, ItemInput{Name: "Меч", Price: "100"})
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("update rewrites the item and republishes", func(t *testing.T) {
		catalog := &memCatalog{items: []domain.CatalogItem{{ID: 1, Name: "Меч", Price: 100}}}
		svc, pub := newCatalogSvc(catalog)

		item, err := svc.Update(context.Background(), 1, ItemInput{Name: "Меч+", Price: "150", Discount: "10"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if item.Name != "Меч+" || item.Price != 150 || item.Discount != 10 {
			t.Fatalf("unexpected item: %+v", item)
		}
		if catalog.items[0].Name != "Меч+" {
			t.Fatalf("expected store updated, got %+v", catalog.items[0])
		}
		if pub.calls != 1 {
			t.Fatalf("expected 1 republish, got %d", pub.calls)
		}
	})

	t.Run("delete returns the removed item and republishes", func(t *testing.T) {
		catalog := &memCatalog{items: []domain.CatalogItem{{ID: 1, Name: "Меч", Price: 100}}}
		svc, pub := newCatalogSvc(catalog)

		item, err := svc.Delete(context.Background(), 1)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if item.Name != "Меч" {
			t.Fatalf("unexpected item: %+v", item)
		}
		if len(catalog.items) != 0 {
			t.Fatalf("expected empty catalog, got %d items", len(catalog.items))
		}
		if pub.calls != 1 {
			t.Fatalf("expected 1 republish, got %d", pub.calls)
		}
	})

	t.Run("delete of a missing item surfaces ErrItemNotFound", func(t *testing.T) {
		svc, _ := newCatalogSvc(&memCatalog{})
		if _, err := svc.Delete(context.Background(), 7); !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("a failed republish does not fail the mutation", func(t *testing.T) {
		catalog := &memCatalog{}
		resolver := staticResolver{known: map[string]bool{}}
		pub := &countingPublisher{err: errStorage}
		svc := NewCatalogService(catalog, resolver, pub, nil)

		if _, err := svc.Create(context.Background(), ItemInput{Name: "Меч", Price: "100"}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(catalog.items) != 1 {
			t.Fatalf("expected item persisted, got %d items", len(catalog.items))
		}
	})
}
