package service

import (
	"errors"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

// Errors for directory operations that have no ledger counterpart.
var (
	ErrInvalidInput = errors.New("requête invalide")
	ErrConflict     = errors.New("conflit avec l'état actuel")
)

// Error carries a user-facing message on top of a classifying sentinel
// (a ledger sentinel, ErrInvalidInput or ErrConflict).
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func forbidden(message string) error {
	return &Error{Message: message, Err: ledger.ErrForbidden}
}

func notFound(message string) error {
	return &Error{Message: message, Err: ledger.ErrNotFound}
}

func invalid(message string) error {
	return &Error{Message: message, Err: ErrInvalidInput}
}

func conflict(message string) error {
	return &Error{Message: message, Err: ErrConflict}
}

// missing translates a repository miss into ledger.ErrNotFound.
func missing(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ledger.ErrNotFound
	}
	return err
}

// UserMessage returns the message of err that may be shown to end users: the
// message of the outermost Error, or the ledger sentinel it wraps. ok is
// false for unexpected failures.
func UserMessage(err error) (message string, ok bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message, true
	}
	for _, sentinel := range []error{
		ledger.ErrInvalidAmount,
		ledger.ErrInvalidContributor,
		ledger.ErrForbidden,
		ledger.ErrNotFound,
		ledger.ErrGiftPurchased,
		ledger.ErrAlreadyPurchased,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}
