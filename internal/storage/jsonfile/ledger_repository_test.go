package jsonfile

import (
	"errors"
	"testing"
	"time"

	"github.com/MrFolium/KeeperShop-dBot/internal/domain"
)

func newLedgerRepo(t *testing.T) *LedgerRepository {
	t.Helper()
	repo, err := NewLedgerRepository(NewStore(t.TempDir()))
	if err != nil {
		t.Fatalf("new ledger repository: %v", err)
	}
	return repo
}

func TestLedgerRepository(t *testing.T) {
	t.Parallel()

	opened := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	closed := opened.Add(30 * time.Minute)

	t.Run("open records an open ticket", func(t *testing.T) {
		repo := newLedgerRepo(t)
		ticket, err := repo.Open("ch1", "author", "partner", opened)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if ticket.Status != domain.TicketStatusOpen {
			t.Fatalf("expected open status, got %q", ticket.Status)
		}
		got, err := repo.Get("ch1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.AuthorID != "author" || got.PartnerID != "partner" || !got.CreatedAt.Equal(opened) {
			t.Fatalf("unexpected ticket: %+v", got)
		}
	})

	t.Run("open of an occupied channel is a conflict", func(t *testing.T) {
		repo := newLedgerRepo(t)
		if _, err := repo.Open("ch1", "author", "partner", opened); err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := repo.Open("ch1", "other", "else", opened); !errors.Is(err, domain.ErrTicketExists) {
			t.Fatalf("expected ErrTicketExists, got %v", err)
		}
	})

	t.Run("close stamps the ticket and appends to history", func(t *testing.T) {
		repo := newLedgerRepo(t)
		if _, err := repo.Open("ch1", "author", "partner", opened); err != nil {
			t.Fatalf("open: %v", err)
		}
		ticket, err := repo.Close("ch1", "admin", closed)
		if err != nil {
			t.Fatalf("close: %v", err)
		}
		if ticket.Status != domain.TicketStatusClosed || ticket.ClosedBy != "admin" {
			t.Fatalf("unexpected closed ticket: %+v", ticket)
		}
		if ticket.ClosedAt == nil || !ticket.ClosedAt.Equal(closed) {
			t.Fatalf("expected closed at %v, got %v", closed, ticket.ClosedAt)
		}
		history := repo.History()
		if len(history) != 1 {
			t.Fatalf("expected 1 history record, got %d", len(history))
		}
		rec := history[0]
		if rec.ChannelID != "ch1" || rec.ClosedBy != "admin" || !rec.ClosedAt.Equal(closed) {
			t.Fatalf("unexpected history record: %+v", rec)
		}
	})

	t.Run("second close is rejected without changing the stamps", func(t *testing.T) {
		repo := newLedgerRepo(t)
		if _, err := repo.Open("ch1", "author", "partner", opened); err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := repo.Close("ch1", "admin", closed); err != nil {
			t.Fatalf("close: %v", err)
		}
		later := closed.Add(time.Hour)
		ticket, err := repo.Close("ch1", "stranger", later)
		if !errors.Is(err, domain.ErrTicketClosed) {
			t.Fatalf("expected ErrTicketClosed, got %v", err)
		}
		if ticket.ClosedBy != "admin" || !ticket.ClosedAt.Equal(closed) {
			t.Fatalf("expected first close stamps kept, got %+v", ticket)
		}
		if got := len(repo.History()); got != 1 {
			t.Fatalf("expected history unchanged, got %d records", got)
		}
	})

	t.Run("unknown channels return ErrTicketNotFound", func(t *testing.T) {
		repo := newLedgerRepo(t)
		if _, err := repo.Get("nope"); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
		if _, err := repo.Close("nope", "admin", closed); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
		if err := repo.Remove("nope"); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})

	t.Run("remove rolls back an open entry", func(t *testing.T) {
		repo := newLedgerRepo(t)
		if _, err := repo.Open("ch1", "author", "partner", opened); err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := repo.Remove("ch1"); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if _, err := repo.Get("ch1"); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound after remove, got %v", err)
		}
	})

	t.Run("ledger survives a reopen", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := NewLedgerRepository(NewStore(dir))
		if err != nil {
			t.Fatalf("new ledger repository: %v", err)
		}
		if _, err := repo.Open("ch1", "author", "partner", opened); err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := repo.Close("ch1", "author", closed); err != nil {
			t.Fatalf("close: %v", err)
		}

		reopened, err := NewLedgerRepository(NewStore(dir))
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		ticket, err := reopened.Get("ch1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if ticket.Status != domain.TicketStatusClosed {
			t.Fatalf("expected closed ticket after reopen, got %+v", ticket)
		}
		if got := len(reopened.History()); got != 1 {
			t.Fatalf("expected 1 history record after reopen, got %d", got)
		}
	})
}
