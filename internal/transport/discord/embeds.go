package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

const (
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorRed    = 0xe74c3c
	colorOrange = 0xe67e22
	colorGold   = 0xf1c40f
)

const (
	cartManagerTitle = "🛒 Управление корзиной"
	poweredBy        = "✨ Powered by MrFolium ✨"
)

// Component and modal custom ids. Prefixed ids carry a payload after
// the prefix (item id, channel id or user id).
const (
	shopAddPrefix    = "shop_add_"
	shopRemovePrefix = "shop_remove_"

	cartViewID  = "cart_view"
	cartClearID = "cart_clear"
	cartOrderID = "cart_order"

	adminAddID           = "admin_add_item"
	adminEditID          = "admin_edit_item"
	adminDeleteID        = "admin_delete_item"
	adminItemIDsID       = "admin_item_ids"
	adminEditSelectID    = "admin_edit_select"
	adminDeleteSelectID  = "admin_delete_select"
	deleteConfirmPrefix  = "admin_delete_confirm_"
	deleteCancelID       = "admin_delete_cancel"
	addItemModalID       = "admin_add_modal"
	editItemModalPrefix  = "admin_edit_modal_"
	orderFormModalID     = "order_form"
	createExchangeID     = "create_exchange"
	exchangeSelectPrefix = "exchange_select_"
	closeExchangePrefix  = "close_exchange_"
)

func cartLinesText(lines []domain.CartLine) string {
	if len(lines) == 0 {
		return "Пусто"
	}
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("- %s: %dр", line.Name, line.Price))
	}
	return strings.Join(parts, "\n")
}

func orderSummaryEmbed(order domain.Order) *discordgo.MessageEmbed {
	comment := order.Comment
	if comment == "" {
		comment = "Отсутствует"
	}
	return &discordgo.MessageEmbed{
		Title: "📝 Новый заказ",
		Color: colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Координаты", Value: order.Coords},
			{Name: "Измерение", Value: order.Dimension},
			{Name: "Ник", Value: order.Username},
			{Name: "Комментарий", Value: comment},
			{Name: "Корзина", Value: cartLinesText(order.Lines)},
			{Name: "Итого", Value: fmt.Sprintf("%dр", order.Total)},
			{Name: "Покупатель", Value: fmt.Sprintf("<@%s>", order.BuyerID)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Заказ " + order.Ref},
		Timestamp: order.CreatedAt.Format(time.RFC3339),
	}
}

func orderNoticeEmbeds() []*discordgo.MessageEmbed {
	return []*discordgo.MessageEmbed{
		{
			Title: "⏰ Время работы магазина",
			Description: "**Обратите внимание!** Магазин работает с 11:00 до 22:00 по МСК.\n" +
				"Заказы, оформленные вне рабочего времени, будут обработаны в рабочее время.",
			Color: colorBlue,
		},
		{
			Title: "🚚 Стоимость доставки по незеру",
			Description: "**Важная информация!** Доставка свыше 5000 блоков по незеру будет стоить 2р/1000 блоков.\n" +
				"Первые 5000 блоков включены в стоимость заказа и доставляются бесплатно.",
			Color: colorGold,
		},
	}
}

func exchangeInstructionsEmbed(ticket domain.ExchangeTicket, channelID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔄 Новый запрос на сделку",
		Description: fmt.Sprintf("Сделка между <@%s> и <@%s>", ticket.AuthorID, ticket.PartnerID),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📝 Инструкция",
				Value: "1. Опишите предметы, которые хотите обменять\n" +
					"2. Дождитесь подтверждения от партнера\n" +
					"3. Администратор проверит и подтвердит сделку\n" +
					"4. После завершения сделки тикет будет закрыт",
			},
			{
				Name: "⚠️ Важно",
				Value: "- Будьте вежливы и терпеливы\n" +
					"- Четко описывайте предметы сделки\n" +
					"- Дождитесь подтверждения администратора перед сделкой\n" +
					"- Используйте команду `!closeexchange` для закрытия тикета",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID тикета: " + channelID},
	}
}

func exchangeClosedEmbed(ticket domain.ExchangeTicket) *discordgo.MessageEmbed {
	closedAt := ticket.CreatedAt
	if ticket.ClosedAt != nil {
		closedAt = *ticket.ClosedAt
	}
	return &discordgo.MessageEmbed{
		Title:       "🔒 Тикет сделки закрыт",
		Description: fmt.Sprintf("Тикет был закрыт пользователем <@%s>", ticket.ClosedBy),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Участники сделки",
				Value: fmt.Sprintf("<@%s> и <@%s>", ticket.AuthorID, ticket.PartnerID),
			},
			{
				Name:   "Время создания",
				Value:  fmt.Sprintf("<t:%d:F>", ticket.CreatedAt.Unix()),
				Inline: true,
			},
			{
				Name:   "Время закрытия",
				Value:  fmt.Sprintf("<t:%d:F>", closedAt.Unix()),
				Inline: true,
			},
		},
	}
}

func exchangePostEmbed(title, description, imageURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Как начать сделку?",
				Value: "Нажмите на кнопку «Создать сделку» ниже и выберите пользователя, с которым хотите совершить сделку.",
			},
			{
				Name: "Правила сделок",
				Value: "1. Сделки происходят только через официальные тикеты\n" +
					"2. Администрация выступает гарантом сделки\n" +
					"3. Запрещены обманы и мошенничество\n" +
					"4. Подробно описывайте предметы сделки",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: poweredBy},
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}
	return embed
}

func cartEmbed(lines []domain.CartLine, total int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🛒 Ваша корзина",
		Description: cartLinesText(lines),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Итого", Value: fmt.Sprintf("%dр", total)},
		},
	}
}

func itemListEmbed(items []domain.CatalogItem) *discordgo.MessageEmbed {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		channel := "Основной"
		if item.ChannelID != "" {
			channel = item.ChannelID
		}
		parts = append(parts, fmt.Sprintf("🔹 %s — ID: %d, Канал: %s", item.Name, item.ID, channel))
	}
	return &discordgo.MessageEmbed{
		Title:       "📜 Список товаров",
		Description: strings.Join(parts, "\n"),
		Color:       colorBlue,
	}
}
