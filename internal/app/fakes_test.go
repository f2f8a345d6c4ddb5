package app

import (
	"context"
	"errors"
	"time"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// In-memory doubles for the store and platform interfaces. They mimic
// the persistence semantics closely enough for the service-level tests;
// file behavior is covered by the jsonfile package tests.

type memCatalog struct {
	items     []domain.CatalogItem
	insertErr error
}

func (m *memCatalog) List() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *memCatalog) Get(id int) (domain.CatalogItem, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.CatalogItem{}, domain.ErrItemNotFound
}

func (m *memCatalog) Insert(item domain.CatalogItem) (domain.CatalogItem, error) {
	if m.insertErr != nil {
		return domain.CatalogItem{}, m.insertErr
	}
	item.ID = len(m.items) + 1
	m.items = append(m.items, item)
	return item, nil
}

func (m *memCatalog) Update(item domain.CatalogItem) error {
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			return nil
		}
	}
	return domain.ErrItemNotFound
}

func (m *memCatalog) Remove(id int) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrItemNotFound
}

type staticResolver struct {
	known map[string]bool
}

func (r staticResolver) ChannelExists(channelID string) bool {
	return r.known[channelID]
}

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(context.Context) error {
	p.calls++
	return p.err
}

type memCarts struct {
	carts   map[string][]domain.CartLine
	takeErr error
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[string][]domain.CartLine{}}
}

func (m *memCarts) Append(userID string, line domain.CartLine) error {
	m.carts[userID] = append(m.carts[userID], line)
	return nil
}

func (m *memCarts) RemoveFirst(userID, name string) (bool, error) {
	lines := m.carts[userID]
	for i, line := range lines {
		if line.Name == name {
			m.carts[userID] = append(lines[:i], lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memCarts) Clear(userID string) error {
	m.carts[userID] = nil
	return nil
}

func (m *memCarts) Lines(userID string) []domain.CartLine {
	lines := m.carts[userID]
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

func (m *memCarts) TakeAndClear(userID string) ([]domain.CartLine, error) {
	if m.takeErr != nil {
		return nil, m.takeErr
	}
	lines := m.carts[userID]
	m.carts[userID] = nil
	return lines, nil
}

type fakeOpener struct {
	channelID string
	err       error
	orders    []domain.Order
}

func (o *fakeOpener) OpenTicket(_ context.Context, order domain.Order) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	o.orders = append(o.orders, order)
	return o.channelID, nil
}

type memLedger struct {
	tickets map[string]domain.ExchangeTicket
	openErr error
}

func newMemLedger() *memLedger {
	return &memLedger{tickets: map[string]domain.ExchangeTicket{}}
}

func (m *memLedger) Open(channelID, authorID, partnerID string, at time.Time) (domain.ExchangeTicket, error) {
	if m.openErr != nil {
		return domain.ExchangeTicket{}, m.openErr
	}
	if _, ok := m.tickets[channelID]; ok {
		return domain.ExchangeTicket{}, domain.ErrTicketExists
	}
	ticket := domain.ExchangeTicket{
		ChannelID: channelID,
		AuthorID:  authorID,
		PartnerID: partnerID,
		CreatedAt: at,
		Status:    domain.TicketStatusOpen,
	}
	m.tickets[channelID] = ticket
	return ticket, nil
}

func (m *memLedger) Close(channelID, actorID string, at time.Time) (domain.ExchangeTicket, error) {
	ticket, ok := m.tickets[channelID]
	if !ok {
		return domain.ExchangeTicket{}, domain.ErrTicketNotFound
	}
	if ticket.Status == domain.TicketStatusClosed {
		return ticket, domain.ErrTicketClosed
	}
	closedAt := at
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &closedAt
	ticket.ClosedBy = actorID
	m.tickets[channelID] = ticket
	return ticket, nil
}

func (m *memLedger) Get(channelID string) (domain.ExchangeTicket, error) {
	ticket, ok := m.tickets[channelID]
	if !ok {
		return domain.ExchangeTicket{}, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (m *memLedger) Remove(channelID string) error {
	if _, ok := m.tickets[channelID]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(m.tickets, channelID)
	return nil
}

type fakeExchangeChannels struct {
	nextID    string
	createErr error

	created      int
	deleted      []string
	instructions []string
	announced    []string
	archived     []string
}

func (c *fakeExchangeChannels) CreateExchangeChannel(context.Context, string, string) (string, error) {
	if c.createErr != nil {
		return "", c.createErr
	}
	c.created++
	return c.nextID, nil
}

func (c *fakeExchangeChannels) DeleteChannel(_ context.Context, channelID string) error {
	c.deleted = append(c.deleted, channelID)
	return nil
}

func (c *fakeExchangeChannels) PostInstructions(_ context.Context, channelID string, _ domain.ExchangeTicket) error {
	c.instructions = append(c.instructions, channelID)
	return nil
}

func (c *fakeExchangeChannels) AnnounceClosure(_ context.Context, channelID string, _ domain.ExchangeTicket) error {
	c.announced = append(c.announced, channelID)
	return nil
}

func (c *fakeExchangeChannels) ArchiveChannel(_ context.Context, channelID string) error {
	c.archived = append(c.archived, channelID)
	return nil
}

type staticDirectory struct {
	admins map[string]bool
	bots   map[string]bool
}

func (d staticDirectory) IsAdmin(userID string) bool { return d.admins[userID] }
func (d staticDirectory) IsBot(userID string) bool   { return d.bots[userID] }

var errStorage = errors.New("storage unavailable")
