package calculator

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Share computes how much userID owes for the transaction under its split rule.
//
// Rules:
//   - non-participants owe nothing
//   - equal: total / number of participants (exact, never rounded)
//   - percentage: percentage / 100 × total, zero when the user has no entry
//   - exact: the user's entry verbatim, zero when absent
func Share(t *models.Transaction, userID string) money.Amount {
	if !t.IsParticipant(userID) {
		return money.Zero()
	}

	total := money.FromDecimal(t.TotalAmount())

	switch split := t.Split.(type) {
	case models.EqualSplit:
		return total.Div(money.FromInt(int64(len(t.Participants))))
	case models.PercentageSplit:
		pct, ok := split.Percentages[userID]
		if !ok {
			return money.Zero()
		}
		return money.FromDecimal(pct).Div(money.Hundred()).Mul(total)
	case models.ExactSplit:
		amount, ok := split.Amounts[userID]
		if !ok {
			return money.Zero()
		}
		return money.FromDecimal(amount)
	}
	return money.Zero()
}

// Payment returns the amount userID paid toward the transaction.
func Payment(t *models.Transaction, userID string) money.Amount {
	paid, ok := t.Payers[userID]
	if !ok {
		return money.Zero()
	}
	return money.FromDecimal(paid)
}

// Balance is what userID paid minus what they owe within one transaction.
// Positive means the user is owed money, negative means they owe money.
func Balance(t *models.Transaction, userID string) money.Amount {
	return Payment(t, userID).Sub(Share(t, userID))
}

// Shares returns the share of every participant.
func Shares(t *models.Transaction) map[string]money.Amount {
	shares := make(map[string]money.Amount, len(t.Participants))
	for _, p := range t.Participants {
		shares[p] = Share(t, p)
	}
	return shares
}
