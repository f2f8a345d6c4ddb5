package discord

import (
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

func TestModalValue(t *testing.T) {
	t.Parallel()

	data := discordgo.ModalSubmitInteractionData{
		CustomID: addItemModalID,
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: inputItemName, Value: "Меч"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: inputItemPrice, Value: "100"},
			}},
		},
	}

	if got := modalValue(data, inputItemName); got != "Меч" {
		t.Fatalf("expected name value, got %q", got)
	}
	if got := modalValue(data, inputItemPrice); got != "100" {
		t.Fatalf("expected price value, got %q", got)
	}
	if got := modalValue(data, inputItemDiscount); got != "" {
		t.Fatalf("expected empty value for absent input, got %q", got)
	}
}

func TestItemInputFromModal(t *testing.T) {
	t.Parallel()

	row := func(customID, value string) discordgo.MessageComponent {
		return &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: customID, Value: value},
		}}
	}
	data := discordgo.ModalSubmitInteractionData{
		CustomID: addItemModalID,
		Components: []discordgo.MessageComponent{
			row(inputItemName, "Меч"),
			row(inputItemPrice, "100"),
			row(inputItemDiscount, "20"),
			row(inputItemDescription, "острый"),
			row(inputItemImage, "img.png | 555"),
		},
	}

	in := itemInputFromModal(data)
	if in.Name != "Меч" || in.Price != "100" || in.Discount != "20" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.Description != "острый" || in.ImageAndChannel != "img.png | 555" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestItemSelect(t *testing.T) {
	t.Parallel()

	t.Run("options mirror the catalog", func(t *testing.T) {
		items := []domain.CatalogItem{
			{ID: 1, Name: "Меч"},
			{ID: 2, Name: "Щит"},
		}
		components := itemSelect(adminEditSelectID, items)
		row, ok := components[0].(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("expected an actions row, got %T", components[0])
		}
		menu, ok := row.Components[0].(discordgo.SelectMenu)
		if !ok {
			t.Fatalf("expected a select menu, got %T", row.Components[0])
		}
		if menu.CustomID != adminEditSelectID {
			t.Fatalf("expected custom id %q, got %q", adminEditSelectID, menu.CustomID)
		}
		if len(menu.Options) != 2 {
			t.Fatalf("expected 2 options, got %d", len(menu.Options))
		}
		if menu.Options[1].Label != "Щит" || menu.Options[1].Value != "2" {
			t.Fatalf("unexpected option: %+v", menu.Options[1])
		}
	})

	t.Run("options are capped at the platform limit", func(t *testing.T) {
		items := make([]domain.CatalogItem, 40)
		for i := range items {
			items[i] = domain.CatalogItem{ID: i + 1, Name: "Товар " + strconv.Itoa(i+1)}
		}
		components := itemSelect(adminDeleteSelectID, items)
		menu := components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
		if len(menu.Options) != 25 {
			t.Fatalf("expected 25 options, got %d", len(menu.Options))
		}
		if menu.Options[24].Value != "25" {
			t.Fatalf("expected the first 25 items kept in order, got %q", menu.Options[24].Value)
		}
	})
}

func TestChannelSuffix(t *testing.T) {
	t.Parallel()

	if got := channelSuffix(""); got != "" {
		t.Fatalf("expected empty suffix, got %q", got)
	}
	if got := channelSuffix("555"); got != " в канал с ID 555" {
		t.Fatalf("unexpected suffix: %q", got)
	}
}
