package sitebook

import "errors"

var (
	// ErrInvalid reports a rejected input. The wrapping error carries the
	// human readable reason.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound reports an unknown record id.
	ErrNotFound = errors.New("not found")
	// ErrNotConfigured reports that no category holds a system link an
	// operation requires.
	ErrNotConfigured = errors.New("not configured")
	// ErrAlreadyPaid reports a commission that is not due anymore.
	ErrAlreadyPaid = errors.New("commission already paid")
	// ErrReferenced reports an entity that transactions still point to.
	ErrReferenced = errors.New("referenced by transactions")
	// ErrInsufficientStock reports an issue larger than the stock on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
)
