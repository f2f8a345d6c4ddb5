package discord

import (
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

const (
	inputItemName        = "item_name"
	inputItemPrice       = "item_price"
	inputItemDiscount    = "item_discount"
	inputItemDescription = "item_description"
	inputItemImage       = "item_image_channel"

	inputCoords    = "coords"
	inputDimension = "dimension"
	inputUsername  = "username"
	inputComment   = "comment"
)

func textInput(customID, label, placeholder, value string, required bool) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    customID,
			Label:       label,
			Style:       discordgo.TextInputShort,
			Placeholder: placeholder,
			Value:       value,
			Required:    required,
		},
	}}
}

func addItemModal() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: addItemModalID,
			Title:    "Добавить товар",
			Components: []discordgo.MessageComponent{
				textInput(inputItemName, "Название товара", "Введите название", "", true),
				textInput(inputItemPrice, "Цена", "Введите цену", "", true),
				textInput(inputItemDiscount, "Скидка в рублях", "Введите сумму скидки", "", false),
				textInput(inputItemDescription, "Описание", "Введите описание товара", "", false),
				textInput(inputItemImage, "URL изображения | ID канала", "URL изображения | ID канала (необязательно)", "", false),
			},
		},
	}
}

func editItemModal(item domain.CatalogItem) *discordgo.InteractionResponse {
	combined := item.Image
	if item.ChannelID != "" {
		combined = item.Image + " | " + item.ChannelID
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: editItemModalPrefix + strconv.Itoa(item.ID),
			Title:    "Редактировать товар",
			Components: []discordgo.MessageComponent{
				textInput(inputItemName, "Название", "", item.Name, true),
				textInput(inputItemPrice, "Цена", "", strconv.Itoa(item.Price), true),
				textInput(inputItemDiscount, "Скидка в рублях", "", strconv.Itoa(item.Discount), false),
				textInput(inputItemDescription, "Описание", "", item.Description, false),
				textInput(inputItemImage, "URL изображения | ID канала", "URL изображения | ID канала (необязательно)", combined, false),
			},
		},
	}
}

func orderFormModal() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: orderFormModalID,
			Title:    "Форма заказа",
			Components: []discordgo.MessageComponent{
				textInput(inputCoords, "Координаты", "Введите координаты...", "", true),
				textInput(inputDimension, "Измерение", "Введите измерение...", "", true),
				textInput(inputUsername, "Ваш ник", "Введите ваш ник...", "", true),
				textInput(inputComment, "Комментарий", "Необязательно", "", false),
			},
		},
	}
}
