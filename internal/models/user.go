package models

import "time"

// User represents a member of the ledger.
// Users are created through the ledger and are never deleted.
type User struct {
	// ID is the unique identifier for the user (UUID format by default).
	ID string

	// Name is the display name of the user.
	Name string

	// Contact is a free-form contact string (usually an email address).
	Contact string

	// CreatedAt is when the user was added to the ledger.
	CreatedAt time.Time
}
