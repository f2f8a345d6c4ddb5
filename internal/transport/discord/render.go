package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

const historyPageSize = 100

// botEmbedMessages pages through recent channel history and returns
// the bot's own messages that carry at least one embed, i.e. rendered
// catalog/panel messages.
func (g *Gateway) botEmbedMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	var out []*discordgo.Message
	before := ""
	for fetched := 0; fetched < limit; {
		page := historyPageSize
		if rest := limit - fetched; rest < page {
			page = rest
		}
		messages, err := g.session.ChannelMessages(channelID, page, before, "", "")
		if err != nil {
			return nil, err
		}
		if len(messages) == 0 {
			break
		}
		for _, m := range messages {
			if m.Author != nil && m.Author.ID == g.botUserID() && len(m.Embeds) > 0 {
				out = append(out, m)
			}
		}
		before = messages[len(messages)-1].ID
		fetched += len(messages)
	}
	return out, nil
}

// ClearRendered deletes the bot's previously rendered item messages in
// the channel.
func (g *Gateway) ClearRendered(ctx context.Context, channelID string) error {
	messages, err := g.botEmbedMessages(channelID, 200)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if err := g.deleteMessage(ctx, channelID, m.ID); err != nil {
			g.logger.Error("delete rendered message", "channel", channelID, "message", m.ID, "error", err)
		}
	}
	return nil
}

// RenderItem posts one catalog item: embed plus add/remove buttons.
// The buttons carry the item id; the cart snapshot is taken from the
// live catalog at click time.
func (g *Gateway) RenderItem(ctx context.Context, channelID string, item domain.CatalogItem) error {
	var priceText string
	if item.Discount > 0 {
		priceText = fmt.Sprintf("Цена: ~~%dр~~ **%dр**\n", item.Price, item.FinalPrice())
	} else {
		priceText = fmt.Sprintf("Цена: %dр\n", item.Price)
	}
	description := priceText
	if item.Description != "" {
		description += "\n" + item.Description
	}

	embed := &discordgo.MessageEmbed{
		Title:       item.Name,
		Description: description,
		Color:       colorGreen,
	}
	if item.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: item.Image}
	}

	id := strconv.Itoa(item.ID)
	_, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: embed,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SuccessButton,
					Label:    "✔ Добавить",
					CustomID: shopAddPrefix + id,
				},
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "✖ Убрать",
					CustomID: shopRemovePrefix + id,
				},
			}},
		},
	})
	return err
}

// RenderCartManager replaces the cart-manager message: the previous
// manager embeds are removed, then a fresh one is posted.
func (g *Gateway) RenderCartManager(ctx context.Context, channelID string) error {
	messages, err := g.botEmbedMessages(channelID, 50)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if m.Embeds[0].Title != cartManagerTitle {
			continue
		}
		if err := g.deleteMessage(ctx, channelID, m.ID); err != nil {
			g.logger.Error("delete cart manager message", "channel", channelID, "error", err)
		}
	}

	_, err = g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       cartManagerTitle,
			Description: "Нажмите кнопку, чтобы взаимодействовать с корзиной",
			Color:       colorGold,
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.PrimaryButton,
					Label:    "👁️‍🗨️ Посмотреть",
					CustomID: cartViewID,
				},
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "🗑 Очистить",
					CustomID: cartClearID,
				},
				discordgo.Button{
					Style:    discordgo.SuccessButton,
					Label:    "📝 К покупке",
					CustomID: cartOrderID,
				},
			}},
		},
	})
	return err
}

// RenderAdminPanel purges the admin channel and posts the panel.
func (g *Gateway) RenderAdminPanel(ctx context.Context, channelID string) error {
	messages, err := g.session.ChannelMessages(channelID, historyPageSize, "", "", "")
	if err != nil {
		return err
	}
	for _, m := range messages {
		if err := g.deleteMessage(ctx, channelID, m.ID); err != nil {
			g.logger.Error("purge admin channel", "channel", channelID, "message", m.ID, "error", err)
		}
	}

	_, err = g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       "🔧 Админ-меню",
			Description: "Управление магазином",
			Color:       colorRed,
			Footer:      &discordgo.MessageEmbedFooter{Text: poweredBy},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SuccessButton,
					Label:    "Добавить товар",
					CustomID: adminAddID,
				},
				discordgo.Button{
					Style:    discordgo.PrimaryButton,
					Label:    "Редактировать товар",
					CustomID: adminEditID,
				},
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "Удалить товар",
					CustomID: adminDeleteID,
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "Показать ID товаров",
					CustomID: adminItemIDsID,
				},
			}},
		},
	})
	return err
}
