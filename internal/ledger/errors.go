package ledger

import "errors"

var (
	// ErrReferential is wrapped when a transaction names a user the ledger does not know.
	ErrReferential = errors.New("unknown user reference")

	// ErrNotFound is wrapped when a queried user or transaction does not exist.
	ErrNotFound = errors.New("not found")
)
