package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const orderChannelPrefix = "заказ-"

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.Prefix) {
		return
	}

	body := strings.TrimPrefix(m.Content, b.cfg.Prefix)
	name, rest, _ := strings.Cut(body, " ")
	name = strings.ToLower(strings.TrimSpace(name))
	rest = strings.TrimSpace(rest)
	ctx := context.Background()

	switch name {
	case "say":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdSay(m, rest)
	case "embed":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdEmbed(m, rest)
	case "announce":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdAnnounce(m, rest)
	case "dm":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdDM(m, rest)
	case "clear":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdClear(ctx, m, rest)
	case "pay":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdPay(m)
	case "itemids":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdItemIDs(m)
	case "updateshop":
		if !b.requireAdmin(m) {
			return
		}
		b.deleteCommand(m)
		if err := b.publisher.Publish(ctx); err != nil {
			b.logger.Error("publish shop", "error", err)
			b.sendTemp(m.ChannelID, "❌ Не удалось обновить магазин.", 5*time.Second)
			return
		}
		b.sendTemp(m.ChannelID, "✅ Магазин обновлен!", 5*time.Second)
	case "updateadmin":
		if !b.requireAdmin(m) {
			return
		}
		b.deleteCommand(m)
		if err := b.publisher.PublishAdminPanel(ctx); err != nil {
			b.logger.Error("publish admin panel", "error", err)
			return
		}
		b.sendTemp(m.ChannelID, "✅ Админ-панель обновлена!", 5*time.Second)
	case "close":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdCloseOrder(ctx, m)
	case "createexchange":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdCreateExchange(m, rest)
	case "closeexchange":
		b.cmdCloseExchange(ctx, m)
	case "adminhelp":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdAdminHelp(m)
	case "restart":
		if !b.requireAdmin(m) {
			return
		}
		b.cmdRestart(ctx, m)
	}
}

func (b *Bot) requireAdmin(m *discordgo.MessageCreate) bool {
	if b.gateway.IsAdmin(m.Author.ID) {
		return true
	}
	b.sendTemp(m.ChannelID, "❌ У вас нет прав на выполнение этой команды!", 5*time.Second)
	return false
}

func (b *Bot) deleteCommand(m *discordgo.MessageCreate) {
	if err := b.session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		b.logger.Error("delete command message", "error", err)
	}
}

// sendTemp sends a message and removes it after the delay.
func (b *Bot) sendTemp(channelID, content string, after time.Duration) {
	msg, err := b.session.ChannelMessageSend(channelID, content)
	if err != nil {
		b.logger.Error("send message", "channel", channelID, "error", err)
		return
	}
	time.AfterFunc(after, func() {
		if err := b.session.ChannelMessageDelete(channelID, msg.ID); err != nil {
			b.logger.Error("delete temp message", "channel", channelID, "error", err)
		}
	})
}

// channelRef accepts a raw id or a <#id> mention.
func channelRef(arg string) string {
	arg = strings.TrimSpace(arg)
	arg = strings.TrimPrefix(arg, "<#")
	return strings.TrimSuffix(arg, ">")
}

// userRef accepts a raw id or a <@id>/<@!id> mention.
func userRef(arg string) string {
	arg = strings.TrimSpace(arg)
	arg = strings.TrimPrefix(arg, "<@")
	arg = strings.TrimPrefix(arg, "!")
	return strings.TrimSuffix(arg, ">")
}

func (b *Bot) cmdSay(m *discordgo.MessageCreate, rest string) {
	channelArg, message, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(message) == "" {
		b.sendTemp(m.ChannelID, "❌ Укажите канал и сообщение! Пример: !say #канал текст", 10*time.Second)
		return
	}
	b.deleteCommand(m)
	if _, err := b.session.ChannelMessageSend(channelRef(channelArg), strings.TrimSpace(message)); err != nil {
		b.logger.Error("say", "error", err)
		b.sendTemp(m.ChannelID, "❌ Канал не найден!", 5*time.Second)
	}
}

func (b *Bot) cmdEmbed(m *discordgo.MessageCreate, rest string) {
	channelArg, message, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(message) == "" {
		b.sendTemp(m.ChannelID, "❌ Укажите канал и текст! Пример: !embed #канал Заголовок | Описание", 10*time.Second)
		return
	}
	b.deleteCommand(m)

	title := ""
	description := strings.TrimSpace(message)
	if t, d, found := strings.Cut(message, "|"); found {
		title = strings.TrimSpace(t)
		description = strings.TrimSpace(d)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorGreen,
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelRef(channelArg), embed); err != nil {
		b.logger.Error("embed", "error", err)
		b.sendTemp(m.ChannelID, "❌ Канал не найден!", 5*time.Second)
	}
}

func (b *Bot) cmdAnnounce(m *discordgo.MessageCreate, rest string) {
	channelArg, message, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(message) == "" {
		b.sendTemp(m.ChannelID, "❌ Укажите канал и текст объявления! Пример: !announce #канал текст объявления", 10*time.Second)
		return
	}
	b.deleteCommand(m)

	embed := &discordgo.MessageEmbed{
		Title:       "📢 Объявление",
		Description: strings.TrimSpace(message),
		Color:       colorGold,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "От " + m.Author.Username,
			IconURL: m.Author.AvatarURL(""),
		},
	}
	channelID := channelRef(channelArg)
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Error("announce", "error", err)
		b.sendTemp(m.ChannelID, "❌ Канал не найден!", 5*time.Second)
		return
	}
	b.sendTemp(m.ChannelID, fmt.Sprintf("✅ Объявление отправлено в канал <#%s>!", channelID), 5*time.Second)
}

func (b *Bot) cmdDM(m *discordgo.MessageCreate, rest string) {
	userArg, message, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(message) == "" {
		b.sendTemp(m.ChannelID, "❌ Укажите пользователя и сообщение! Пример: !dm @пользователь текст сообщения", 10*time.Second)
		return
	}
	b.deleteCommand(m)

	userID := userRef(userArg)
	dm, err := b.session.UserChannelCreate(userID)
	if err == nil {
		_, err = b.session.ChannelMessageSend(dm.ID, strings.TrimSpace(message))
	}
	if err != nil {
		b.sendTemp(m.ChannelID, fmt.Sprintf("❌ Не удалось отправить сообщение пользователю <@%s>. Возможно, у него закрыты личные сообщения.", userID), 10*time.Second)
		return
	}
	b.sendTemp(m.ChannelID, fmt.Sprintf("✅ Сообщение отправлено пользователю <@%s>!", userID), 5*time.Second)
}

func (b *Bot) cmdClear(ctx context.Context, m *discordgo.MessageCreate, rest string) {
	amount := 100
	if rest != "" {
		n, err := strconv.Atoi(strings.Fields(rest)[0])
		if err != nil || n <= 0 {
			b.sendTemp(m.ChannelID, "❌ Укажите корректное число сообщений для удаления!", 5*time.Second)
			return
		}
		amount = n
	}
	b.deleteCommand(m)

	deleted := 0
	before := ""
	for deleted < amount {
		page := historyPageSize
		if rest := amount - deleted; rest < page {
			page = rest
		}
		messages, err := b.session.ChannelMessages(m.ChannelID, page, before, "", "")
		if err != nil {
			b.logger.Error("fetch channel history", "channel", m.ChannelID, "error", err)
			break
		}
		if len(messages) == 0 {
			break
		}
		before = messages[len(messages)-1].ID
		for _, msg := range messages {
			if err := b.gateway.deleteMessage(ctx, m.ChannelID, msg.ID); err != nil {
				b.logger.Error("purge message", "channel", m.ChannelID, "error", err)
				continue
			}
			deleted++
		}
	}
	b.sendTemp(m.ChannelID, fmt.Sprintf("✅ Удалено %d сообщений!", deleted), 5*time.Second)
}

func (b *Bot) cmdPay(m *discordgo.MessageCreate) {
	b.deleteCommand(m)
	payment := b.cfg.Payment
	embed := &discordgo.MessageEmbed{
		Title:       "💳 Данные для оплаты",
		Description: "Используйте эти данные для оплаты:",
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Номер карты", Value: "```\n" + payment.CardNumber + "\n```"},
			{Name: "Получатель", Value: payment.CardHolder},
			{Name: "Банк", Value: payment.BankName, Inline: true},
			{
				Name: "Что делать",
				Value: "1. Переведите деньги на карту\n" +
					"2. Скачайте чек\n" +
					"3. Отправьте чек в этот канал",
			},
		},
	}
	if _, err := b.session.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		b.logger.Error("send payment info", "error", err)
	}
}

func (b *Bot) cmdItemIDs(m *discordgo.MessageCreate) {
	b.deleteCommand(m)
	items := b.catalog.List()
	if len(items) == 0 {
		b.sendTemp(m.ChannelID, "❗ В магазине нет товаров.", 5*time.Second)
		return
	}
	msg, err := b.session.ChannelMessageSendEmbed(m.ChannelID, itemListEmbed(items))
	if err != nil {
		b.logger.Error("send item list", "error", err)
		return
	}
	time.AfterFunc(30*time.Second, func() {
		if err := b.session.ChannelMessageDelete(m.ChannelID, msg.ID); err != nil {
			b.logger.Error("delete item list", "error", err)
		}
	})
}

// cmdCloseOrder closes an order ticket: member role for the buyer, a
// review prompt, then the channel is deleted after a short delay.
func (b *Bot) cmdCloseOrder(ctx context.Context, m *discordgo.MessageCreate) {
	channel, err := b.session.Channel(m.ChannelID)
	if err != nil || !strings.HasPrefix(channel.Name, orderChannelPrefix) {
		b.sendTemp(m.ChannelID, "❗ Эта команда работает только в тикетах!", 5*time.Second)
		return
	}

	buyerName := strings.TrimPrefix(channel.Name, orderChannelPrefix)
	buyerID := b.grantMemberRole(m, buyerName)

	if b.cfg.ReviewChannelID != "" && b.gateway.ChannelExists(b.cfg.ReviewChannelID) {
		content := fmt.Sprintf("%s, спасибо за покупку! Теперь вы можете оставить отзыв о нашем сервисе.", memberMention(buyerID, buyerName))
		if _, err := b.session.ChannelMessageSend(b.cfg.ReviewChannelID, content); err != nil {
			b.logger.Error("send review prompt", "error", err)
		}
	}

	if _, err := b.session.ChannelMessageSend(m.ChannelID, "✅ Тикет закрывается через 5 секунд..."); err != nil {
		b.logger.Error("send close notice", "error", err)
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(b.cfg.CloseDeleteDelay):
	}
	if _, err := b.session.ChannelDelete(m.ChannelID); err != nil {
		b.logger.Error("delete order channel", "channel", m.ChannelID, "error", err)
	}
}

// memberMention renders a user mention, falling back to the plain name
// when the member could not be resolved.
func memberMention(userID, fallback string) string {
	if userID == "" {
		return fallback
	}
	return "<@" + userID + ">"
}

// grantMemberRole gives the buyer the configured member role, finding
// the member by the nickname baked into the ticket channel name. It
// returns the resolved user id, or "" when no member matched.
func (b *Bot) grantMemberRole(m *discordgo.MessageCreate, buyerName string) string {
	members, err := b.session.GuildMembersSearch(b.cfg.GuildID, buyerName, 1)
	if err != nil || len(members) == 0 {
		b.logger.Warn("ticket member not found", "name", buyerName)
		return ""
	}
	member := members[0]

	roles, err := b.session.GuildRoles(b.cfg.GuildID)
	if err != nil {
		b.logger.Error("fetch guild roles", "error", err)
		return member.User.ID
	}
	for _, role := range roles {
		if role.Name != "Участник" {
			continue
		}
		if err := b.session.GuildMemberRoleAdd(b.cfg.GuildID, member.User.ID, role.ID); err != nil {
			b.sendTemp(m.ChannelID, "❌ Ошибка при выдаче роли: "+err.Error(), 5*time.Second)
			return member.User.ID
		}
		b.sendTemp(m.ChannelID, fmt.Sprintf("✅ Роль 'Участник' выдана пользователю <@%s>", member.User.ID), 5*time.Second)
		return member.User.ID
	}
	b.sendTemp(m.ChannelID, "❌ Роль 'Участник' не найдена на сервере!", 5*time.Second)
	return member.User.ID
}

// cmdCreateExchange posts the exchange entry point (embed plus the
// persistent "create exchange" button) into the named channel.
func (b *Bot) cmdCreateExchange(m *discordgo.MessageCreate, rest string) {
	channelArg, titleAndDescription, ok := strings.Cut(rest, " ")
	title, description, found := strings.Cut(titleAndDescription, "|")
	if !ok || !found {
		b.sendTemp(m.ChannelID, "❌ Неверный формат. Используйте: `!createexchange ID_канала Заголовок | Описание`", 10*time.Second)
		return
	}

	channelID := channelRef(channelArg)
	if !b.gateway.ChannelExists(channelID) {
		b.sendTemp(m.ChannelID, "❌ Указанный канал не найден.", 5*time.Second)
		return
	}

	imageURL := ""
	if len(m.Attachments) > 0 {
		imageURL = m.Attachments[0].URL
	}

	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: exchangePostEmbed(strings.TrimSpace(title), strings.TrimSpace(description), imageURL),
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.PrimaryButton,
				Label:    "Создать сделку",
				Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
				CustomID: createExchangeID,
			},
		}}},
	})
	if err != nil {
		b.sendTemp(m.ChannelID, "❌ Произошла ошибка: "+err.Error(), 10*time.Second)
		return
	}
	b.sendTemp(m.ChannelID, fmt.Sprintf("✅ Сообщение с кнопкой сделки создано в канале <#%s>", channelID), 5*time.Second)
}

// cmdCloseExchange closes the exchange ticket of the current channel;
// it builds the same close request the channel button does.
func (b *Bot) cmdCloseExchange(ctx context.Context, m *discordgo.MessageCreate) {
	if _, err := b.exchanges.Get(m.ChannelID); err != nil {
		b.sendTemp(m.ChannelID, "❌ Эта команда может быть использована только в канале тикета сделки.", 5*time.Second)
		return
	}

	b.handleCloseRequest(ctx, closeRequest{
		actorID:   m.Author.ID,
		channelID: m.ChannelID,
		reply: func(content string, ephemeral bool) {
			if _, err := b.session.ChannelMessageSend(m.ChannelID, content); err != nil {
				b.logger.Error("send close reply", "error", err)
			}
		},
	})
}

func (b *Bot) cmdAdminHelp(m *discordgo.MessageCreate) {
	embed := &discordgo.MessageEmbed{
		Title:       "📚 Команды администратора",
		Description: "Список доступных команд администраторов",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🛠️ Управление ботом",
				Value: "!restart - Перезапустить модули бота\n" +
					"!close - Закрыть тикет\n" +
					"!embed <канал> <заголовок> | <описание> - Создать эмбед\n" +
					"!say <канал> <сообщение> - Отправить сообщение от имени бота\n" +
					"!announce <канал> <текст> - Создать объявление\n" +
					"!dm <пользователь> <текст> - Написать пользователю\n" +
					"!clear [число] - Очистить канал\n" +
					"!pay - Отправить данные для оплаты",
			},
			{
				Name: "🛒 Магазин",
				Value: "!itemids - Показать ID товаров\n" +
					"!updateshop - Обновить магазин\n" +
					"!updateadmin - Обновить админ-панель",
			},
			{
				Name: "🔄 Система обмена",
				Value: "!createexchange <ID канала> <Заголовок> | <Описание> - Создать пост с кнопкой обмена\n" +
					"!closeexchange - Закрыть тикет обмена",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Запрошено " + m.Author.Username,
			IconURL: m.Author.AvatarURL(""),
		},
	}
	if _, err := b.session.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		b.logger.Error("send admin help", "error", err)
	}
}

// cmdRestart re-runs the publish setup routines. State is rebuilt from
// the stores; no code is reloaded.
func (b *Bot) cmdRestart(ctx context.Context, m *discordgo.MessageCreate) {
	msg, err := b.session.ChannelMessageSend(m.ChannelID, "🔄 Перезапуск модулей...")
	if err != nil {
		b.logger.Error("send restart notice", "error", err)
		return
	}
	b.Setup(ctx)
	content := "✅ Модули успешно перезапущены!"
	if _, err := b.session.ChannelMessageEdit(m.ChannelID, msg.ID, content); err != nil {
		b.logger.Error("edit restart notice", "error", err)
	}
	b.logger.Info("surfaces republished by admin", "user", m.Author.ID)
}
