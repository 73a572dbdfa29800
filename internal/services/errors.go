package services

import "errors"

// Error kinds returned by the transaction core. The HTTP layer maps each
// kind to a distinct client-facing status; the core has no notion of
// transport status codes.
var (
	// ErrNotFound indicates a referenced entity is missing or not visible to the caller
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor is not a party to the entity or lacks the role
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState indicates the operation is illegal for the entity's current status
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition indicates a document status machine violation
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidInput indicates malformed or out-of-range input
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateBid indicates the contractor already has a non-rejected bid on the job
	ErrDuplicateBid = errors.New("duplicate bid")
	// ErrOverPayment indicates the payment would push amount_paid past the total
	ErrOverPayment = errors.New("overpayment")
	// ErrConcurrencyConflict indicates the caller lost the award race.
	// It is never retried by the core; a retried award after losing the
	// race would be a bug, not a transient fault.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
