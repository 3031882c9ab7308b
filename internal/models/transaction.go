package models

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

// Transaction represents an expense event: who paid how much, who shares it,
// and how the total is divided.
//
// Transactions are immutable once constructed through NewTransaction.
type Transaction struct {
	// ID is the unique identifier assigned by the ledger.
	ID string

	// Description is free text (e.g., "Dinner", "Groceries").
	Description string

	// CreatedAt is when the transaction was recorded.
	CreatedAt time.Time

	// Payers maps user ID to the positive amount that user paid.
	Payers map[string]decimal.Decimal

	// Participants are the users sharing the expense, without duplicates.
	Participants []string

	// Split is the rule dividing the total among Participants.
	Split SplitRule
}

// NewTransaction builds and validates a transaction.
// A nil split means an equal split. Duplicate participants are dropped,
// keeping the first occurrence. The returned error wraps ErrValidation.
func NewTransaction(
	id, description string,
	createdAt time.Time,
	payers map[string]decimal.Decimal,
	participants []string,
	split SplitRule,
) (*Transaction, error) {
	if split == nil {
		split = EqualSplit{}
	}

	t := &Transaction{
		ID:           id,
		Description:  description,
		CreatedAt:    createdAt,
		Payers:       maps.Clone(payers),
		Participants: dedupe(participants),
		Split:        split,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the transaction's invariants.
func (t *Transaction) Validate() error {
	if len(t.Payers) == 0 {
		return fmt.Errorf("%w: transaction must have at least one payer", ErrValidation)
	}
	if len(t.Participants) == 0 {
		return fmt.Errorf("%w: transaction must have at least one participant", ErrValidation)
	}

	for _, userID := range t.PayerIDs() {
		if !t.Payers[userID].IsPositive() {
			return fmt.Errorf("%w: payment amount must be positive for user %s", ErrValidation, userID)
		}
	}

	switch split := t.Split.(type) {
	case PercentageSplit:
		if len(split.Percentages) == 0 {
			return nil
		}
		sum := sumValues(split.Percentages)
		if !money.FromDecimal(sum).WithinEpsilon(money.Hundred()) {
			return fmt.Errorf("%w: percentage split must sum to 100%%, got %s%%", ErrValidation, sum)
		}
	case ExactSplit:
		if len(split.Amounts) == 0 {
			return nil
		}
		sum := sumValues(split.Amounts)
		total := t.TotalAmount()
		if !money.FromDecimal(sum).WithinEpsilon(money.FromDecimal(total)) {
			return fmt.Errorf("%w: exact split amounts must sum to %s, got %s", ErrValidation, total, sum)
		}
	case EqualSplit:
	default:
		return fmt.Errorf("%w: unsupported split rule %T", ErrValidation, t.Split)
	}
	return nil
}

// TotalAmount is the sum of all payer amounts.
func (t *Transaction) TotalAmount() decimal.Decimal {
	return sumValues(t.Payers)
}

// PayerIDs returns the payer IDs in sorted order.
func (t *Transaction) PayerIDs() []string {
	return slices.Sorted(maps.Keys(t.Payers))
}

// IsParticipant reports whether userID shares this expense.
func (t *Transaction) IsParticipant(userID string) bool {
	return slices.Contains(t.Participants, userID)
}

// Involves reports whether userID paid for or shares this expense.
func (t *Transaction) Involves(userID string) bool {
	_, paid := t.Payers[userID]
	return paid || t.IsParticipant(userID)
}

// InvolvedUserIDs returns participants followed by payers that are not
// participants, without duplicates.
func (t *Transaction) InvolvedUserIDs() []string {
	ids := slices.Clone(t.Participants)
	for _, userID := range t.PayerIDs() {
		if !slices.Contains(ids, userID) {
			ids = append(ids, userID)
		}
	}
	return ids
}

func sumValues(values map[string]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
