package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrFolium/KeeperShop-dBot/internal/clock"
	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

// Ledger is the exchange ledger document as the workflow needs it.
type Ledger interface {
	Open(channelID, authorID, partnerID string, at time.Time) (domain.ExchangeTicket, error)
	Close(channelID, actorID string, at time.Time) (domain.ExchangeTicket, error)
	Get(channelID string) (domain.ExchangeTicket, error)
	Remove(channelID string) error
}

// ExchangeChannels manipulates the private negotiation channels.
type ExchangeChannels interface {
	CreateExchangeChannel(ctx context.Context, authorID, partnerID string) (channelID string, err error)
	DeleteChannel(ctx context.Context, channelID string) error
	PostInstructions(ctx context.Context, channelID string, ticket domain.ExchangeTicket) error
	AnnounceClosure(ctx context.Context, channelID string, ticket domain.ExchangeTicket) error
	ArchiveChannel(ctx context.Context, channelID string) error
}

// Directory answers identity questions the ledger cannot.
type Directory interface {
	IsAdmin(userID string) bool
	IsBot(userID string) bool
}

// ExchangeService brokers peer-to-peer trade tickets: a private channel
// paired with a ledger entry, closed exactly once and then archived.
type ExchangeService struct {
	ledger       Ledger
	channels     ExchangeChannels
	directory    Directory
	clock        clock.Clock
	archiveDelay time.Duration
	logger       *slog.Logger
}

const defaultArchiveDelay = 10 * time.Second

func NewExchangeService(ledger Ledger, channels ExchangeChannels, directory Directory, clk clock.Clock, opts ...ExchangeServiceOption) *ExchangeService {
	svc := &ExchangeService{
		ledger:       ledger,
		channels:     channels,
		directory:    directory,
		clock:        clk,
		archiveDelay: defaultArchiveDelay,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExchangeServiceOption func(*ExchangeService)

// WithArchiveDelay overrides the pause between announcing a closure and
// archiving the channel.
func WithArchiveDelay(d time.Duration) ExchangeServiceOption {
	return func(s *ExchangeService) {
		if d >= 0 {
			s.archiveDelay = d
		}
	}
}

func WithExchangeLogger(logger *slog.Logger) ExchangeServiceOption {
	return func(s *ExchangeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates the negotiation channel and its ledger entry as one
// logical unit: a ledger failure deletes the freshly created channel so
// the two never diverge.
func (s *ExchangeService) Open(ctx context.Context, authorID, partnerID string) (string, domain.ExchangeTicket, error) {
	if partnerID == authorID {
		return "", domain.ExchangeTicket{}, domain.Invalid("partner", "вы не можете выбрать себя для сделки")
	}
	if s.directory.IsBot(partnerID) {
		return "", domain.ExchangeTicket{}, domain.Invalid("partner", "вы не можете выбрать бота для сделки")
	}

	channelID, err := s.channels.CreateExchangeChannel(ctx, authorID, partnerID)
	if err != nil {
		return "", domain.ExchangeTicket{}, fmt.Errorf("create exchange channel: %w", err)
	}

	ticket, err := s.ledger.Open(channelID, authorID, partnerID, s.clock.Now())
	if err != nil {
		if delErr := s.channels.DeleteChannel(ctx, channelID); delErr != nil {
			s.logger.Error("delete orphan exchange channel", "channel", channelID, "error", delErr)
		}
		return "", domain.ExchangeTicket{}, fmt.Errorf("record exchange ticket: %w", err)
	}

	if err := s.channels.PostInstructions(ctx, channelID, ticket); err != nil {
		// Channel and ledger entry are in place; missing instructions
		// are recoverable by the participants.
		s.logger.Error("post exchange instructions", "channel", channelID, "error", err)
	}

	return channelID, ticket, nil
}

// Authorize reports whether actorID may close the ticket: a participant
// or an administrator.
func (s *ExchangeService) Authorize(channelID, actorID string) (bool, error) {
	ticket, err := s.ledger.Get(channelID)
	if err != nil {
		return false, err
	}
	return ticket.IsParticipant(actorID) || s.directory.IsAdmin(actorID), nil
}

// Close transitions the ticket to closed, announces the closure and,
// after the archive delay, revokes write access and relocates the
// channel. A ticket that is already closed is left alone: another
// closer owns the archival. Archival failures are logged and swallowed;
// the ledger status is already authoritative.
func (s *ExchangeService) Close(ctx context.Context, channelID, actorID string) (domain.ExchangeTicket, error) {
	ok, err := s.Authorize(channelID, actorID)
	if err != nil {
		return domain.ExchangeTicket{}, err
	}
	if !ok {
		return domain.ExchangeTicket{}, domain.ErrPermissionDenied
	}

	ticket, err := s.ledger.Close(channelID, actorID, s.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrTicketClosed) {
			return ticket, domain.ErrTicketClosed
		}
		return domain.ExchangeTicket{}, err
	}

	if err := s.channels.AnnounceClosure(ctx, channelID, ticket); err != nil {
		s.logger.Error("announce ticket closure", "channel", channelID, "error", err)
	}

	select {
	case <-ctx.Done():
		return ticket, nil
	case <-time.After(s.archiveDelay):
	}

	if err := s.channels.ArchiveChannel(ctx, channelID); err != nil {
		s.logger.Error("archive exchange channel", "channel", channelID, "error", err)
	}

	return ticket, nil
}

// Get looks up the ticket for a channel.
func (s *ExchangeService) Get(channelID string) (domain.ExchangeTicket, error) {
	return s.ledger.Get(channelID)
}
