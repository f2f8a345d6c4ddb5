package domain

// CatalogItem is a purchasable product entry. JSON field names match the
// persisted shop document, so existing data files load unchanged.
type CatalogItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Discount    int    `json:"discount"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	// ChannelID routes the item to a specific publish channel; empty
	// means the default shop channel.
	ChannelID string `json:"channel_id,omitempty"`
}

// FinalPrice is the effective price after discount.
func (i CatalogItem) FinalPrice() int {
	return i.Price - i.Discount
}
