package models

import "errors"

// ErrValidation is wrapped by every error describing a transaction whose
// internal invariants do not hold. Such a transaction is never stored.
var ErrValidation = errors.New("validation error")
