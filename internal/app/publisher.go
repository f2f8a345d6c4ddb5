package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// CatalogRenderer renders catalog state into platform channels.
type CatalogRenderer interface {
	ChannelResolver
	// ClearRendered deletes prior bot-authored rendered messages in the
	// channel (a rendered message is one carrying rich content).
	ClearRendered(ctx context.Context, channelID string) error
	RenderItem(ctx context.Context, channelID string, item domain.CatalogItem) error
	RenderCartManager(ctx context.Context, channelID string) error
	RenderAdminPanel(ctx context.Context, channelID string) error
}

// Publisher re-renders the whole catalog as platform messages: a full
// delete-and-recreate, not an incremental diff. Catalogs are small and
// low-churn, so the simple replace wins.
type Publisher struct {
	catalog        CatalogStore
	renderer       CatalogRenderer
	shopChannelID  string
	cartChannelID  string
	adminChannelID string
	logger         *slog.Logger
}

func NewPublisher(catalog CatalogStore, renderer CatalogRenderer, shopChannelID, cartChannelID, adminChannelID string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		catalog:        catalog,
		renderer:       renderer,
		shopChannelID:  shopChannelID,
		cartChannelID:  cartChannelID,
		adminChannelID: adminChannelID,
		logger:         logger,
	}
}

// Publish groups items by destination channel (falling back to the
// default shop channel when an item's destination does not resolve),
// clears every destination and renders the items in catalog order.
func (p *Publisher) Publish(ctx context.Context) error {
	items := p.catalog.List()

	grouped := map[string][]domain.CatalogItem{p.shopChannelID: nil}
	order := []string{p.shopChannelID}
	for _, item := range items {
		dest := p.shopChannelID
		if item.ChannelID != "" && p.renderer.ChannelExists(item.ChannelID) {
			dest = item.ChannelID
		}
		if _, ok := grouped[dest]; !ok {
			order = append(order, dest)
		}
		grouped[dest] = append(grouped[dest], item)
	}

	for _, channelID := range order {
		if !p.renderer.ChannelExists(channelID) {
			p.logger.Warn("shop channel not found, skipping", "channel", channelID)
			continue
		}
		if err := p.renderer.ClearRendered(ctx, channelID); err != nil {
			return fmt.Errorf("clear channel %s: %w", channelID, err)
		}
		for _, item := range grouped[channelID] {
			if err := p.renderer.RenderItem(ctx, channelID, item); err != nil {
				return fmt.Errorf("render item %q: %w", item.Name, err)
			}
		}
	}
	return nil
}

// PublishCartManager replaces the cart-manager message in the cart
// channel.
func (p *Publisher) PublishCartManager(ctx context.Context) error {
	if p.cartChannelID == "" || !p.renderer.ChannelExists(p.cartChannelID) {
		p.logger.Warn("cart channel not found, skipping")
		return nil
	}
	return p.renderer.RenderCartManager(ctx, p.cartChannelID)
}

// PublishAdminPanel replaces the admin panel message in the admin
// channel.
func (p *Publisher) PublishAdminPanel(ctx context.Context) error {
	if p.adminChannelID == "" || !p.renderer.ChannelExists(p.adminChannelID) {
		p.logger.Warn("admin channel not found, skipping")
		return nil
	}
	return p.renderer.RenderAdminPanel(ctx, p.adminChannelID)
}
