// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Store persists users and transactions.
// It satisfies ledger.Journal so the ledger can write through it, and it
// reloads everything it stored as a snapshot on startup.
type Store interface {
	// AppendUser persists a newly added user.
	AppendUser(ctx context.Context, user *models.User) error

	// AppendTransaction persists a newly added, already validated transaction.
	AppendTransaction(ctx context.Context, tx *models.Transaction) error

	// Load returns every stored user and transaction in insertion order.
	// Transactions are revalidated while loading.
	Load(ctx context.Context) (*models.Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
