package domain

import "time"

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// ExchangeTicket is the ledger entry for one peer-to-peer trade
// negotiation, keyed by its private channel. A ticket transitions
// open -> closed exactly once and is then retained as history.
type ExchangeTicket struct {
	ChannelID string       `json:"-"`
	AuthorID  string       `json:"author_id"`
	PartnerID string       `json:"partner_id"`
	CreatedAt time.Time    `json:"created_at"`
	Status    TicketStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closed_at,omitempty"`
	ClosedBy  string       `json:"closed_by,omitempty"`
}

// IsParticipant reports whether userID is one of the two negotiating
// parties.
func (t ExchangeTicket) IsParticipant(userID string) bool {
	return userID == t.AuthorID || userID == t.PartnerID
}
