package models

// Snapshot is the complete persisted state of a ledger.
// Users and Transactions are in the order they were added; that order is
// significant because it breaks ties when settlements are simplified.
type Snapshot struct {
	Users        []*User
	Transactions []*Transaction
}
