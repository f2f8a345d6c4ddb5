package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// CatalogStore is the catalog document as the editor needs it.
type CatalogStore interface {
	List() []domain.CatalogItem
	Get(id int) (domain.CatalogItem, error)
	Insert(item domain.CatalogItem) (domain.CatalogItem, error)
	Update(item domain.CatalogItem) error
	Remove(id int) error
}

// ChannelResolver checks that a channel id names a real channel.
type ChannelResolver interface {
	ChannelExists(channelID string) bool
}

// Republisher re-renders the catalog after an edit.
type Republisher interface {
	Publish(ctx context.Context) error
}

// CatalogService is the admin catalog editor: validated CRUD over the
// catalog store, each mutation followed by a full re-publish.
type CatalogService struct {
	catalog  CatalogStore
	channels ChannelResolver
	pub      Republisher
	logger   *slog.Logger
}

func NewCatalogService(catalog CatalogStore, channels ChannelResolver, pub Republisher, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{catalog: catalog, channels: channels, pub: pub, logger: logger}
}

// ItemInput carries the raw modal fields. Price and Discount arrive as
// text; ImageAndChannel is the combined "image URL | channel id" field.
type ItemInput struct {
	Name            string
	Price           string
	Discount        string
	Description     string
	ImageAndChannel string
}

type parsedItem struct {
	price     int
	discount  int
	image     string
	channelID string
}

func (s *CatalogService) parse(in ItemInput) (parsedItem, error) {
	var p parsedItem

	if strings.TrimSpace(in.Name) == "" {
		return p, domain.Invalid("name", "название не может быть пустым")
	}

	price, err := strconv.Atoi(strings.TrimSpace(in.Price))
	if err != nil || price < 0 {
		return p, domain.Invalid("price", "цена должна быть неотрицательным числом")
	}
	p.price = price

	if d := strings.TrimSpace(in.Discount); d != "" {
		discount, err := strconv.Atoi(d)
		if err != nil || discount < 0 {
			return p, domain.Invalid("discount", "скидка должна быть неотрицательным числом")
		}
		p.discount = discount
	}
	if p.discount >= p.price {
		return p, domain.Invalid("discount", "скидка не может быть больше или равна цене товара")
	}

	image, channelID, err := splitImageAndChannel(in.ImageAndChannel)
	if err != nil {
		return p, err
	}
	if channelID != "" && !s.channels.ChannelExists(channelID) {
		return p, domain.Invalid("channel", "канал с ID "+channelID+" не найден")
	}
	p.image = image
	p.channelID = channelID
	return p, nil
}

// splitImageAndChannel splits the combined "image | channel" modal
// field. Without a separator the whole value is the image URL; a
// channel part of "none" means no routing override.
func splitImageAndChannel(value string) (image, channelID string, err error) {
	if !strings.Contains(value, "|") {
		return strings.TrimSpace(value), "", nil
	}
	parts := strings.SplitN(value, "|", 2)
	image = strings.TrimSpace(parts[0])
	channel := strings.TrimSpace(parts[1])
	if channel == "" || strings.EqualFold(channel, "none") {
		return image, "", nil
	}
	if _, convErr := strconv.ParseUint(channel, 10, 64); convErr != nil {
		return "", "", domain.Invalid("channel", "ID канала должен быть числом")
	}
	return image, channel, nil
}

// Create validates the input, assigns the next id and persists. The
// catalog is untouched when validation fails.
func (s *CatalogService) Create(ctx context.Context, in ItemInput) (domain.CatalogItem, error) {
	p, err := s.parse(in)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	item, err := s.catalog.Insert(domain.CatalogItem{
		Name:        strings.TrimSpace(in.Name),
		Price:       p.price,
		Discount:    p.discount,
		Description: strings.TrimSpace(in.Description),
		Image:       p.image,
		ChannelID:   p.channelID,
	})
	if err != nil {
		return domain.CatalogItem{}, err
	}

	s.republish(ctx)
	return item, nil
}

// Update applies the same validation as Create to an existing item.
func (s *CatalogService) Update(ctx context.Context, id int, in ItemInput) (domain.CatalogItem, error) {
	p, err := s.parse(in)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	item := domain.CatalogItem{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Price:       p.price,
		Discount:    p.discount,
		Description: strings.TrimSpace(in.Description),
		Image:       p.image,
		ChannelID:   p.channelID,
	}
	if err := s.catalog.Update(item); err != nil {
		return domain.CatalogItem{}, err
	}

	s.republish(ctx)
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int) (domain.CatalogItem, error) {
	item, err := s.catalog.Get(id)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if err := s.catalog.Remove(id); err != nil {
		return domain.CatalogItem{}, err
	}

	s.republish(ctx)
	return item, nil
}

func (s *CatalogService) List() []domain.CatalogItem {
	return s.catalog.List()
}

func (s *CatalogService) Get(id int) (domain.CatalogItem, error) {
	return s.catalog.Get(id)
}

// republish is best-effort: the mutation is already persisted, a failed
// render only leaves stale messages behind.
func (s *CatalogService) republish(ctx context.Context) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx); err != nil {
		s.logger.Error("catalog republish failed", "error", err)
	}
}
