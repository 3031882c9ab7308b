package ledger

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

// Restore replaces the ledger contents with a persisted snapshot.
// Transactions must only reference users in the snapshot and IDs must be
// unique. The journal is not called. On error the ledger is left unchanged.
func (l *Ledger) Restore(snapshot *models.Snapshot) error {
	restored := New()

	for _, user := range snapshot.Users {
		if _, dup := restored.users[user.ID]; dup {
			return fmt.Errorf("duplicate user %s in snapshot", user.ID)
		}
		restored.insertUser(user)
	}

	for _, tx := range snapshot.Transactions {
		if _, dup := restored.transactions[tx.ID]; dup {
			return fmt.Errorf("duplicate transaction %s in snapshot", tx.ID)
		}
		for _, userID := range tx.InvolvedUserIDs() {
			if _, ok := restored.users[userID]; !ok {
				return fmt.Errorf("%w: transaction %s references user %s", ErrReferential, tx.ID, userID)
			}
		}
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid transaction %s in snapshot: %w", tx.ID, err)
		}
		restored.insertTransaction(tx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.users = restored.users
	l.userOrder = restored.userOrder
	l.transactions = restored.transactions
	l.txOrder = restored.txOrder
	l.userTransactions = restored.userTransactions
	l.cache.invalidate()

	return nil
}

// Snapshot exports the ledger contents in insertion order.
func (l *Ledger) Snapshot() *models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := &models.Snapshot{
		Users:        make([]*models.User, 0, len(l.userOrder)),
		Transactions: l.orderedTransactions(),
	}
	for _, id := range l.userOrder {
		snapshot.Users = append(snapshot.Users, l.users[id])
	}
	return snapshot
}
