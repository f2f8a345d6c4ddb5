package domain

// CartLine is a name/price snapshot taken when an item is added to a
// cart. Later catalog edits never change existing lines.
type CartLine struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// CartTotal sums line prices.
func CartTotal(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Price
	}
	return total
}
