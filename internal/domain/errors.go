package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrTicketExists     = errors.New("ticket already exists")
	ErrTicketClosed     = errors.New("ticket already closed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrChannelNotFound  = errors.New("channel not found")
)

// ValidationError reports bad user input, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a user-input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
