package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/MrFolium/KeeperShop-dBot/internal/app"
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		b.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(i)
	}
}

func (b *Bot) handleComponent(i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	customID := data.CustomID
	user := interactionUser(i)
	ctx := context.Background()

	switch {
	case strings.HasPrefix(customID, shopAddPrefix):
		b.handleShopAdd(i, user.ID, strings.TrimPrefix(customID, shopAddPrefix))

	case strings.HasPrefix(customID, shopRemovePrefix):
		b.handleShopRemove(i, user.ID, strings.TrimPrefix(customID, shopRemovePrefix))

	case customID == cartViewID:
		lines, total := b.carts.View(user.ID)
		if len(lines) == 0 {
			b.respondText(i, "❗ Ваша корзина пуста.")
			return
		}
		b.respondEmbed(i, cartEmbed(lines, total))

	case customID == cartClearID:
		if err := b.carts.Clear(user.ID); err != nil {
			b.respondText(i, userError(err))
			return
		}
		b.respondText(i, "🗑 Корзина очищена!")

	case customID == cartOrderID:
		if err := b.orders.Checkout(user.ID); err != nil {
			b.respondText(i, userError(err))
			return
		}
		b.respondModal(i, orderFormModal())

	case customID == adminAddID:
		b.respondModal(i, addItemModal())

	case customID == adminEditID:
		items := b.catalog.List()
		if len(items) == 0 {
			b.respondText(i, "❗ В магазине нет товаров для редактирования.")
			return
		}
		b.respondComponents(i, "Выберите товар для редактирования:", itemSelect(adminEditSelectID, items))

	case customID == adminDeleteID:
		items := b.catalog.List()
		if len(items) == 0 {
			b.respondText(i, "❗ В магазине нет товаров для удаления.")
			return
		}
		b.respondComponents(i, "Выберите товар для удаления:", itemSelect(adminDeleteSelectID, items))

	case customID == adminItemIDsID:
		items := b.catalog.List()
		if len(items) == 0 {
			b.respondText(i, "❗ В магазине нет товаров.")
			return
		}
		b.respondEmbed(i, itemListEmbed(items))

	case customID == adminEditSelectID:
		b.handleEditSelect(i, data.Values)

	case customID == adminDeleteSelectID:
		b.handleDeleteSelect(i, data.Values)

	case strings.HasPrefix(customID, deleteConfirmPrefix):
		b.handleDeleteConfirm(ctx, i, strings.TrimPrefix(customID, deleteConfirmPrefix))

	case customID == deleteCancelID:
		b.respondText(i, "❌ Удаление отменено.")

	case customID == createExchangeID:
		b.respondComponents(i,
			"Выберите пользователя, с которым хотите совершить сделку:",
			[]discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.UserSelectMenu,
					CustomID:    exchangeSelectPrefix + user.ID,
					Placeholder: "Выберите пользователя для сделки",
				},
			}}},
		)

	case strings.HasPrefix(customID, exchangeSelectPrefix):
		b.handleExchangeSelect(ctx, i, strings.TrimPrefix(customID, exchangeSelectPrefix), data.Values)

	case strings.HasPrefix(customID, closeExchangePrefix):
		channelID := strings.TrimPrefix(customID, closeExchangePrefix)
		b.handleCloseRequest(ctx, closeRequest{
			actorID:   user.ID,
			channelID: channelID,
			reply: func(content string, ephemeral bool) {
				b.respond(i, content, ephemeral)
			},
		})
	}
}

func (b *Bot) handleShopAdd(i *discordgo.InteractionCreate, userID, rawID string) {
	item, err := b.lookupItem(rawID)
	if err != nil {
		b.respondText(i, userError(err))
		return
	}
	if err := b.carts.Add(userID, item.Name, item.FinalPrice()); err != nil {
		b.respondText(i, userError(err))
		return
	}
	b.respondText(i, fmt.Sprintf("✅ %s добавлен в корзину!", item.Name))
}

func (b *Bot) handleShopRemove(i *discordgo.InteractionCreate, userID, rawID string) {
	item, err := b.lookupItem(rawID)
	if err != nil {
		b.respondText(i, userError(err))
		return
	}
	if err := b.carts.Remove(userID, item.Name); err != nil {
		if errors.Is(err, domain.ErrCartLineNotFound) {
			b.respondText(i, fmt.Sprintf("❗ %s нет в вашей корзине.", item.Name))
			return
		}
		b.respondText(i, userError(err))
		return
	}
	b.respondText(i, fmt.Sprintf("❌ %s убран из корзины.", item.Name))
}

func (b *Bot) lookupItem(rawID string) (domain.CatalogItem, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return domain.CatalogItem{}, domain.ErrItemNotFound
	}
	return b.catalog.Get(id)
}

func (b *Bot) handleEditSelect(i *discordgo.InteractionCreate, values []string) {
	if len(values) == 0 {
		return
	}
	item, err := b.lookupItem(values[0])
	if err != nil {
		b.respondText(i, userError(err))
		return
	}
	b.respondModal(i, editItemModal(item))
}

func (b *Bot) handleDeleteSelect(i *discordgo.InteractionCreate, values []string) {
	if len(values) == 0 {
		return
	}
	item, err := b.lookupItem(values[0])
	if err != nil {
		b.respondText(i, userError(err))
		return
	}

	err = b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "⚠️ Подтверждение удаления",
				Description: fmt.Sprintf("Вы уверены, что хотите удалить товар **%s** (ID: %d)?", item.Name, item.ID),
				Color:       colorRed,
			}},
			Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "Да, удалить",
					CustomID: deleteConfirmPrefix + strconv.Itoa(item.ID),
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "Отмена",
					CustomID: deleteCancelID,
				},
			}}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("interaction respond", "error", err)
	}
}

func (b *Bot) handleDeleteConfirm(ctx context.Context, i *discordgo.InteractionCreate, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		b.respondText(i, userError(domain.ErrItemNotFound))
		return
	}
	item, err := b.catalog.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			b.respondText(i, fmt.Sprintf("❗ Ошибка: товар с ID %d не найден!", id))
			return
		}
		b.respondText(i, userError(err))
		return
	}
	b.respondText(i, fmt.Sprintf("✅ Товар **%s** (ID: %d) удалён!", item.Name, id))
}

func (b *Bot) handleExchangeSelect(ctx context.Context, i *discordgo.InteractionCreate, authorID string, values []string) {
	user := interactionUser(i)
	if user.ID != authorID {
		b.respondText(i, "Только автор запроса может выбрать пользователя для сделки.")
		return
	}
	if len(values) == 0 {
		return
	}

	channelID, _, err := b.exchanges.Open(ctx, authorID, values[0])
	if err != nil {
		b.respondText(i, userError(err))
		return
	}
	b.respondText(i, fmt.Sprintf("✅ Тикет для сделки создан! Перейдите в канал <#%s>", channelID))
}

// closeRequest is the single close-ticket input both trigger sources
// (the channel button and the !closeexchange command) construct.
type closeRequest struct {
	actorID   string
	channelID string
	reply     func(content string, ephemeral bool)
}

// handleCloseRequest validates permission, announces the closure and
// runs the delayed archival through the exchange service. A ticket
// closed by someone else in the meantime is left alone.
func (b *Bot) handleCloseRequest(ctx context.Context, req closeRequest) {
	ticket, err := b.exchanges.Get(req.channelID)
	if err != nil {
		req.reply("❌ Информация о тикете не найдена.", true)
		return
	}
	if ticket.Status == domain.TicketStatusClosed {
		req.reply("❌ Этот тикет уже закрыт.", true)
		return
	}

	authorized, err := b.exchanges.Authorize(req.channelID, req.actorID)
	if err != nil {
		req.reply(userError(err), true)
		return
	}
	if !authorized {
		req.reply("❌ У вас нет прав на закрытие этого тикета.", true)
		return
	}

	req.reply("🔒 Закрытие тикета сделки...", false)

	if _, err := b.exchanges.Close(ctx, req.channelID, req.actorID); err != nil {
		if errors.Is(err, domain.ErrTicketClosed) {
			// Another closer won the race and owns the archival.
			return
		}
		b.logger.Error("close exchange ticket", "channel", req.channelID, "error", err)
	}
}

func (b *Bot) respond(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Error("interaction respond", "error", err)
	}
}

func (b *Bot) respondModal(i *discordgo.InteractionCreate, response *discordgo.InteractionResponse) {
	if err := b.session.InteractionRespond(i.Interaction, response); err != nil {
		b.logger.Error("modal respond", "error", err)
	}
}

// itemSelect builds a select menu over the catalog, capped at the
// platform's 25-option limit.
func itemSelect(customID string, items []domain.CatalogItem) []discordgo.MessageComponent {
	limit := len(items)
	if limit > 25 {
		limit = 25
	}
	options := make([]discordgo.SelectMenuOption, 0, limit)
	for _, item := range items[:limit] {
		options = append(options, discordgo.SelectMenuOption{
			Label:       item.Name,
			Value:       strconv.Itoa(item.ID),
			Description: fmt.Sprintf("ID: %d", item.ID),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			CustomID:    customID,
			Placeholder: "Выберите товар",
			Options:     options,
		},
	}}}
}

func (b *Bot) handleModal(i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	user := interactionUser(i)
	ctx := context.Background()

	switch {
	case data.CustomID == addItemModalID:
		in := itemInputFromModal(data)
		item, err := b.catalog.Create(ctx, in)
		if err != nil {
			b.respondText(i, userError(err))
			return
		}
		b.respondText(i, "✅ Товар **"+item.Name+"** добавлен"+channelSuffix(item.ChannelID)+"!")

	case strings.HasPrefix(data.CustomID, editItemModalPrefix):
		id, err := strconv.Atoi(strings.TrimPrefix(data.CustomID, editItemModalPrefix))
		if err != nil {
			b.respondText(i, userError(domain.ErrItemNotFound))
			return
		}
		in := itemInputFromModal(data)
		item, err := b.catalog.Update(ctx, id, in)
		if err != nil {
			b.respondText(i, userError(err))
			return
		}
		b.respondText(i, "✅ Товар **"+item.Name+"** обновлён"+channelSuffix(item.ChannelID)+"!")

	case data.CustomID == orderFormModalID:
		_, _, err := b.orders.Submit(ctx, app.OrderInput{
			BuyerID:   user.ID,
			BuyerName: user.Username,
			Coords:    modalValue(data, inputCoords),
			Dimension: modalValue(data, inputDimension),
			Username:  modalValue(data, inputUsername),
			Comment:   modalValue(data, inputComment),
		})
		if err != nil {
			b.respondText(i, userError(err))
			return
		}
		b.respondText(i, "✅ Заказ оформлен! Тикет создан.")
	}
}

func channelSuffix(channelID string) string {
	if channelID == "" {
		return ""
	}
	return " в канал с ID " + channelID
}

func itemInputFromModal(data discordgo.ModalSubmitInteractionData) app.ItemInput {
	return app.ItemInput{
		Name:            modalValue(data, inputItemName),
		Price:           modalValue(data, inputItemPrice),
		Discount:        modalValue(data, inputItemDiscount),
		Description:     modalValue(data, inputItemDescription),
		ImageAndChannel: modalValue(data, inputItemImage),
	}
}

// modalValue extracts a text input value by custom id.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
