package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/MrFolium/KeeperShop-dBot/internal/config"
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// Gateway implements the platform callbacks the services need on top
// of a discordgo session. Message deletion is paced through a rate
// limiter: re-publish and purge delete messages one by one and Discord
// throttles bursts hard.
type Gateway struct {
	session *discordgo.Session
	cfg     *config.Config
	deletes *rate.Limiter
	logger  *slog.Logger
}

func NewGateway(session *discordgo.Session, cfg *config.Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		session: session,
		cfg:     cfg,
		deletes: rate.NewLimiter(rate.Limit(4), 4),
		logger:  logger,
	}
}

func (g *Gateway) botUserID() string {
	if g.session.State != nil && g.session.State.User != nil {
		return g.session.State.User.ID
	}
	return ""
}

// ChannelExists reports whether the id resolves to a channel.
func (g *Gateway) ChannelExists(channelID string) bool {
	if channelID == "" {
		return false
	}
	if g.session.State != nil {
		if ch, err := g.session.State.Channel(channelID); err == nil && ch != nil {
			return true
		}
	}
	ch, err := g.session.Channel(channelID)
	return err == nil && ch != nil
}

// IsAdmin reports whether the member holds the configured admin role or
// any role carrying the administrator permission.
func (g *Gateway) IsAdmin(userID string) bool {
	member, err := g.member(userID)
	if err != nil {
		return false
	}
	for _, roleID := range member.Roles {
		if g.cfg.AdminRoleID != "" && roleID == g.cfg.AdminRoleID {
			return true
		}
		role, err := g.session.State.Role(g.cfg.GuildID, roleID)
		if err != nil {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func (g *Gateway) IsBot(userID string) bool {
	if member, err := g.member(userID); err == nil {
		return member.User != nil && member.User.Bot
	}
	user, err := g.session.User(userID)
	if err != nil {
		return false
	}
	return user.Bot
}

// DisplayName resolves a user id to the guild nickname or username.
func (g *Gateway) DisplayName(userID string) string {
	member, err := g.member(userID)
	if err != nil || member.User == nil {
		return userID
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}

func (g *Gateway) member(userID string) (*discordgo.Member, error) {
	if g.session.State != nil {
		if m, err := g.session.State.Member(g.cfg.GuildID, userID); err == nil && m != nil {
			return m, nil
		}
	}
	return g.session.GuildMember(g.cfg.GuildID, userID)
}

// DeleteChannel removes a channel outright.
func (g *Gateway) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := g.session.ChannelDelete(channelID)
	return err
}

// deleteMessage removes one message under the shared rate limit.
func (g *Gateway) deleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := g.deletes.Wait(ctx); err != nil {
		return err
	}
	return g.session.ChannelMessageDelete(channelID, messageID)
}

// ticketOverwrites builds the standard private-ticket permission set:
// hidden from everyone, visible and writable for the bot, the listed
// members and the admin role.
func (g *Gateway) ticketOverwrites(memberIDs ...string) []*discordgo.PermissionOverwrite {
	const memberAllow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   g.cfg.GuildID, // @everyone shares the guild id
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: memberAllow,
		},
		{
			ID:    g.botUserID(),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow | discordgo.PermissionManageChannels,
		},
	}
	for _, id := range memberIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    id,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow,
		})
	}
	if g.cfg.AdminRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    g.cfg.AdminRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberAllow,
		})
	}
	return overwrites
}

// OpenTicket creates the private order channel and posts the order
// summary, the fixed notices and the buyer greeting. The cart is
// cleared by the caller only after this returns without error.
func (g *Gateway) OpenTicket(ctx context.Context, order domain.Order) (string, error) {
	if !g.ChannelExists(g.cfg.TicketCategoryID) {
		return "", domain.ErrChannelNotFound
	}

	channel, err := g.session.GuildChannelCreateComplex(g.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 "заказ-" + order.BuyerName,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             g.cfg.TicketCategoryID,
		PermissionOverwrites: g.ticketOverwrites(order.BuyerID),
	})
	if err != nil {
		return "", fmt.Errorf("create order channel: %w", err)
	}

	if _, err := g.session.ChannelMessageSendEmbed(channel.ID, orderSummaryEmbed(order)); err != nil {
		return "", fmt.Errorf("send order summary: %w", err)
	}

	// Fixed notices are informational; their loss does not invalidate
	// the order.
	for _, embed := range orderNoticeEmbeds() {
		if _, err := g.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			g.logger.Error("send order notice", "channel", channel.ID, "error", err)
		}
	}
	if _, err := g.session.ChannelMessageSend(channel.ID, fmt.Sprintf("<@%s>, ваш заказ оформлен!", order.BuyerID)); err != nil {
		g.logger.Error("send order greeting", "channel", channel.ID, "error", err)
	}

	return channel.ID, nil
}

// CreateExchangeChannel creates the private negotiation channel for the
// two participants.
func (g *Gateway) CreateExchangeChannel(ctx context.Context, authorID, partnerID string) (string, error) {
	if !g.ChannelExists(g.cfg.TicketCategoryID) {
		return "", domain.ErrChannelNotFound
	}

	authorName := g.DisplayName(authorID)
	partnerName := g.DisplayName(partnerID)

	channel, err := g.session.GuildChannelCreateComplex(g.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("сделка-%s-%s", authorName, partnerName),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Сделка между %s и %s", authorName, partnerName),
		ParentID:             g.cfg.TicketCategoryID,
		PermissionOverwrites: g.ticketOverwrites(authorID, partnerID),
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

// PostInstructions posts the pinned instruction embed with the close
// button bound to this channel.
func (g *Gateway) PostInstructions(ctx context.Context, channelID string, ticket domain.ExchangeTicket) error {
	content := fmt.Sprintf("<@%s> <@%s>", ticket.AuthorID, ticket.PartnerID)
	if g.cfg.AdminRoleID != "" {
		content += fmt.Sprintf(" <@&%s>", g.cfg.AdminRoleID)
	}

	_, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embed:   exchangeInstructionsEmbed(ticket, channelID),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "Закрыть тикет",
					Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
					CustomID: closeExchangePrefix + channelID,
				},
			}},
		},
	})
	return err
}

// AnnounceClosure posts the closure summary into the ticket channel.
func (g *Gateway) AnnounceClosure(ctx context.Context, channelID string, ticket domain.ExchangeTicket) error {
	_, err := g.session.ChannelMessageSendEmbed(channelID, exchangeClosedEmbed(ticket))
	return err
}

// ArchiveChannel revokes write access for every overwrite target,
// prefixes the name with the closed marker and moves the channel to the
// archive category when one is configured.
func (g *Gateway) ArchiveChannel(ctx context.Context, channelID string) error {
	channel, err := g.session.Channel(channelID)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}

	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(channel.PermissionOverwrites))
	for _, ow := range channel.PermissionOverwrites {
		updated := *ow
		updated.Allow &^= discordgo.PermissionSendMessages
		updated.Deny |= discordgo.PermissionSendMessages
		overwrites = append(overwrites, &updated)
	}

	edit := &discordgo.ChannelEdit{
		Name:                 "закрыт-" + channel.Name,
		PermissionOverwrites: overwrites,
	}
	if g.cfg.ArchiveCategoryID != "" && g.ChannelExists(g.cfg.ArchiveCategoryID) {
		edit.ParentID = g.cfg.ArchiveCategoryID
	}

	if _, err := g.session.ChannelEdit(channelID, edit); err != nil {
		return fmt.Errorf("edit channel: %w", err)
	}
	return nil
}
