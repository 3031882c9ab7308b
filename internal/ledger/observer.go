package ledger

import (
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Observer is notified of ledger activity. Implementations must be cheap;
// they are called while the ledger lock is held.
type Observer interface {
	UserAdded()
	TransactionAdded(kind models.SplitKind)
	BalanceCacheHit()
	BalanceRecomputed(elapsed time.Duration, transactions int)
}

type nopObserver struct{}

func (nopObserver) UserAdded()                           {}
func (nopObserver) TransactionAdded(models.SplitKind)    {}
func (nopObserver) BalanceCacheHit()                     {}
func (nopObserver) BalanceRecomputed(time.Duration, int) {}
