package calculator

import (
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// NetBalance is a user's balance summed over every transaction they are
// involved in. Positive = owed money, negative = owes money.
type NetBalance struct {
	UserID string
	Amount money.Amount
}

// Settlement is a suggested payment from a debtor to a creditor.
type Settlement struct {
	From   string // Person who pays
	To     string // Person who is paid
	Amount money.Amount
}

// NetBalances sums each user's per-transaction balance over the transactions
// where they pay or participate. The result follows the order of users.
func NetBalances(users []string, transactions []*models.Transaction) []NetBalance {
	out := make([]NetBalance, 0, len(users))
	for _, u := range users {
		net := money.Zero()
		for _, t := range transactions {
			if t.Involves(u) {
				net = net.Add(Balance(t, u))
			}
		}
		out = append(out, NetBalance{UserID: u, Amount: net})
	}
	return out
}

// SimplifySettlements reduces net balances to a list of payments that brings
// everyone to within money.Epsilon of zero.
//
// Balances are sorted ascending (largest debtor first, largest creditor last)
// with a stable sort, so users with equal balances keep their input order.
// Two pointers then walk inwards, each step settling min(|debt|, credit)
// between the current debtor and creditor. Payments of one cent or less are
// absorbed without being emitted. The input slice is not modified.
func SimplifySettlements(balances []NetBalance) []Settlement {
	sorted := slices.Clone(balances)
	slices.SortStableFunc(sorted, func(a, b NetBalance) int {
		return a.Amount.Cmp(b.Amount)
	})

	settlements := []Settlement{}

	i, j := 0, len(sorted)-1
	for i < j {
		debt := sorted[i].Amount
		credit := sorted[j].Amount

		if debt.IsNegligible() && credit.IsNegligible() {
			i++
			j--
			continue
		}

		// Nothing left to move between the two ends
		if !debt.IsNegative() || !credit.IsPositive() {
			break
		}

		amount := money.Min(debt.Abs(), credit)
		if amount.ExceedsEpsilon() {
			settlements = append(settlements, Settlement{
				From:   sorted[i].UserID,
				To:     sorted[j].UserID,
				Amount: amount,
			})
		}

		sorted[i].Amount = debt.Add(amount)
		sorted[j].Amount = credit.Sub(amount)

		if sorted[i].Amount.IsNegligible() {
			i++
		}
		if sorted[j].Amount.IsNegligible() {
			j--
		}
	}

	return settlements
}
