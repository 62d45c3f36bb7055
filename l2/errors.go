package l2

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches lookups of ids absent from the metadata snapshot
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount matches unparseable, negative or out of range input
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSigning matches any failure of the Signer
	ErrSigning = errors.New("signing failed")
)

// NotFoundError names the kind of record ("contract", "coin") and the id
// that had no match.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmountError carries the offending field and its raw input
type AmountError struct {
	Field string
	Input string
	Err   error
}

func (e *AmountError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Input)
}

func (e *AmountError) Is(target error) bool { return target == ErrInvalidAmount }

func (e *AmountError) Unwrap() error { return e.Err }

func amountError(field, input string, err error) *AmountError {
	return &AmountError{Field: field, Input: input, Err: err}
}

// SigningError wraps a Signer failure. Nothing was transmitted.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign message: %v", e.Err)
}

func (e *SigningError) Is(target error) bool { return target == ErrSigning }

func (e *SigningError) Unwrap() error { return e.Err }
