// Package discord adapts the platform's event model (prefix commands,
// buttons, select menus, modals) onto the shop, cart, order and
// exchange services. No business rule lives here: handlers parse the
// interaction, make a single service call and render the outcome.
package discord

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/MrFolium/KeeperShop-dBot/internal/app"
	"github.com/MrFolium/KeeperShop-dBot/internal/config"
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// Bot wires the discordgo session to the services.
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	gateway   *Gateway
	catalog   *app.CatalogService
	carts     *app.CartService
	orders    *app.OrderService
	exchanges *app.ExchangeService
	publisher *app.Publisher
	logger    *slog.Logger
}

func NewBot(
	session *discordgo.Session,
	cfg *config.Config,
	gateway *Gateway,
	catalog *app.CatalogService,
	carts *app.CartService,
	orders *app.OrderService,
	exchanges *app.ExchangeService,
	publisher *app.Publisher,
	logger *slog.Logger,
) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		session:   session,
		cfg:       cfg,
		gateway:   gateway,
		catalog:   catalog,
		carts:     carts,
		orders:    orders,
		exchanges: exchanges,
		publisher: publisher,
		logger:    logger,
	}
}

// Start registers the event handlers and opens the gateway connection.
func (b *Bot) Start() error {
	b.session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	return b.session.Open()
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("bot connected", "user", r.User.Username)

	if err := s.UpdateGameStatus(0, "mioclient.me"); err != nil {
		b.logger.Error("set presence", "error", err)
	}
	b.Setup(context.Background())
}

// Setup re-publishes the three managed surfaces: shop catalog, cart
// manager and admin panel. Runs at startup and again on !restart and
// the update commands; it is the component's explicit
// re-initialization routine.
func (b *Bot) Setup(ctx context.Context) {
	if err := b.publisher.Publish(ctx); err != nil {
		b.logger.Error("publish shop", "error", err)
	}
	if err := b.publisher.PublishCartManager(ctx); err != nil {
		b.logger.Error("publish cart manager", "error", err)
	}
	if err := b.publisher.PublishAdminPanel(ctx); err != nil {
		b.logger.Error("publish admin panel", "error", err)
	}
	b.logger.Info("surfaces published")
}

// userError maps service errors to the message shown to the user.
func userError(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "❗ Ошибка: " + ve.Reason
	case errors.Is(err, domain.ErrCartEmpty):
		return "❗ Ваша корзина пуста! Добавьте товары перед оформлением заказа."
	case errors.Is(err, domain.ErrCartLineNotFound):
		return "❗ Этого товара нет в вашей корзине."
	case errors.Is(err, domain.ErrItemNotFound):
		return "❗ Товар не найден."
	case errors.Is(err, domain.ErrTicketNotFound):
		return "❌ Информация о тикете не найдена."
	case errors.Is(err, domain.ErrPermissionDenied):
		return "❌ У вас нет прав на это действие."
	case errors.Is(err, domain.ErrChannelNotFound):
		return "❌ Ошибка: канал или категория не найдены."
	default:
		return "❌ Произошла ошибка: " + err.Error()
	}
}

// interactionUser returns the acting user for guild and DM
// interactions alike.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func (b *Bot) respondText(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("interaction respond", "error", err)
	}
}

func (b *Bot) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("interaction respond", "error", err)
	}
}

func (b *Bot) respondComponents(i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("interaction respond", "error", err)
	}
}
