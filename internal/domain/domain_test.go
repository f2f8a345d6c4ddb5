package domain

import "testing"

func TestCatalogItemFinalPrice(t *testing.T) {
	t.Parallel()

	item := CatalogItem{Price: 100, Discount: 25}
	if got := item.FinalPrice(); got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
	item.Discount = 0
	if got := item.FinalPrice(); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestCartTotal(t *testing.T) {
	t.Parallel()

	if got := CartTotal(nil); got != 0 {
		t.Fatalf("expected 0 for empty cart, got %d", got)
	}
	lines := []CartLine{{Name: "a", Price: 80}, {Name: "b", Price: 50}, {Name: "a", Price: 80}}
	if got := CartTotal(lines); got != 210 {
		t.Fatalf("expected 210, got %d", got)
	}
}

func TestExchangeTicketIsParticipant(t *testing.T) {
	t.Parallel()

	ticket := ExchangeTicket{AuthorID: "author", PartnerID: "partner"}
	if !ticket.IsParticipant("author") || !ticket.IsParticipant("partner") {
		t.Fatal("expected both parties to be participants")
	}
	if ticket.IsParticipant("stranger") {
		t.Fatal("expected strangers not to be participants")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := Invalid("price", "цена должна быть неотрицательным числом")
	if !IsValidation(err) {
		t.Fatal("expected a validation error")
	}
	want := "invalid price: цена должна быть неотрицательным числом"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if IsValidation(ErrItemNotFound) {
		t.Fatal("sentinel errors are not validation errors")
	}
}
