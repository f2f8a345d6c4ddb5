package jsonfile

import (
	"fmt"
	"sync"
	"time"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

const ledgerFile = "exchanges/exchanges.json"

// ExchangeRecord is one completed exchange in the append-only history.
type ExchangeRecord struct {
	ChannelID string    `json:"channel_id"`
	AuthorID  string    `json:"author_id"`
	PartnerID string    `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
	ClosedAt  time.Time `json:"closed_at"`
	ClosedBy  string    `json:"closed_by"`
}

type ledgerDocument struct {
	Exchanges     []ExchangeRecord                 `json:"exchanges"`
	ActiveTickets map[string]domain.ExchangeTicket `json:"active_tickets"`
}

// LedgerRepository owns the exchange ledger document: per-channel
// tickets plus the history of completed exchanges.
type LedgerRepository struct {
	store *Store

	mu  sync.Mutex
	doc ledgerDocument
}

func NewLedgerRepository(store *Store) (*LedgerRepository, error) {
	r := &LedgerRepository{store: store}
	if err := store.Load(ledgerFile, &r.doc); err != nil {
		return nil, err
	}
	if r.doc.Exchanges == nil {
		r.doc.Exchanges = []ExchangeRecord{}
	}
	if r.doc.ActiveTickets == nil {
		r.doc.ActiveTickets = map[string]domain.ExchangeTicket{}
	}
	return r, nil
}

func (r *LedgerRepository) save() error {
	if err := r.store.Save(ledgerFile, r.doc); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Open records a new open ticket for the channel. A channel that
// already has an entry is a conflict, whatever its status.
func (r *LedgerRepository) Open(channelID, authorID, partnerID string, at time.Time) (domain.ExchangeTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doc.ActiveTickets[channelID]; ok {
		return domain.ExchangeTicket{}, domain.ErrTicketExists
	}

	ticket := domain.ExchangeTicket{
		ChannelID: channelID,
		AuthorID:  authorID,
		PartnerID: partnerID,
		CreatedAt: at,
		Status:    domain.TicketStatusOpen,
	}
	r.doc.ActiveTickets[channelID] = ticket
	if err := r.save(); err != nil {
		delete(r.doc.ActiveTickets, channelID)
		return domain.ExchangeTicket{}, err
	}
	return ticket, nil
}

// Close transitions the ticket to closed exactly once and appends the
// completed exchange to the history. A second close surfaces
// ErrTicketClosed so callers skip the archival side effects.
func (r *LedgerRepository) Close(channelID, actorID string, at time.Time) (domain.ExchangeTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.doc.ActiveTickets[channelID]
	if !ok {
		return domain.ExchangeTicket{}, domain.ErrTicketNotFound
	}
	if ticket.Status == domain.TicketStatusClosed {
		return ticket, domain.ErrTicketClosed
	}

	prev := ticket
	closedAt := at
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &closedAt
	ticket.ClosedBy = actorID
	ticket.ChannelID = channelID
	r.doc.ActiveTickets[channelID] = ticket
	r.doc.Exchanges = append(r.doc.Exchanges, ExchangeRecord{
		ChannelID: channelID,
		AuthorID:  ticket.AuthorID,
		PartnerID: ticket.PartnerID,
		CreatedAt: ticket.CreatedAt,
		ClosedAt:  closedAt,
		ClosedBy:  actorID,
	})
	if err := r.save(); err != nil {
		r.doc.ActiveTickets[channelID] = prev
		r.doc.Exchanges = r.doc.Exchanges[:len(r.doc.Exchanges)-1]
		return domain.ExchangeTicket{}, err
	}
	return ticket, nil
}

func (r *LedgerRepository) Get(channelID string) (domain.ExchangeTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.doc.ActiveTickets[channelID]
	if !ok {
		return domain.ExchangeTicket{}, domain.ErrTicketNotFound
	}
	ticket.ChannelID = channelID
	return ticket, nil
}

// Remove deletes the ticket entry; used to roll back an open whose
// paired channel could not be kept.
func (r *LedgerRepository) Remove(channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doc.ActiveTickets[channelID]; !ok {
		return domain.ErrTicketNotFound
	}
	ticket := r.doc.ActiveTickets[channelID]
	delete(r.doc.ActiveTickets, channelID)
	if err := r.save(); err != nil {
		r.doc.ActiveTickets[channelID] = ticket
		return err
	}
	return nil
}

// History returns a copy of the completed-exchange records.
func (r *LedgerRepository) History() []ExchangeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ExchangeRecord, len(r.doc.Exchanges))
	copy(out, r.doc.Exchanges)
	return out
}
