package domain

import "time"

// Order is composed at submission time from the buyer's delivery form
// and a snapshot of the cart. It is not separately persisted; the
// rendered ticket channel is the record, identified by Ref.
type Order struct {
	Ref       string
	BuyerID   string
	BuyerName string
	Coords    string
	Dimension string
	Username  string
	Comment   string
	Lines     []CartLine
	Total     int
	CreatedAt time.Time
}
