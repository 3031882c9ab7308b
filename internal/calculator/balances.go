package calculator

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Matrix records pairwise debts: m[debtor][creditor] is how much debtor owes
// creditor. Amounts are never negative and a user never owes themselves.
type Matrix map[string]map[string]money.Amount

// Owed returns how much debtor owes creditor, zero when nothing is recorded.
func (m Matrix) Owed(debtor, creditor string) money.Amount {
	return m[debtor][creditor]
}

func (m Matrix) add(debtor, creditor string, amount money.Amount) {
	row, ok := m[debtor]
	if !ok {
		row = make(map[string]money.Amount)
		m[debtor] = row
	}
	row[creditor] = row[creditor].Add(amount)
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for debtor, row := range m {
		cp := make(map[string]money.Amount, len(row))
		for creditor, amount := range row {
			cp[creditor] = amount
		}
		out[debtor] = cp
	}
	return out
}

// PairwiseBalances computes who owes whom across all transactions.
//
// Algorithm, per transaction:
//   - every registered user gets their in-transaction balance
//   - for each debtor (balance < 0), total_positive is the sum of positive
//     balances of the participants other than the debtor
//   - each creditor (balance > 0) receives balance / total_positive of the
//     debtor's debt
//   - a zero total_positive skips that debtor for this transaction
//
// Every user in users has a (possibly empty) row in the result.
func PairwiseBalances(users []string, transactions []*models.Transaction) Matrix {
	matrix := make(Matrix, len(users))
	for _, u := range users {
		matrix[u] = make(map[string]money.Amount)
	}

	for _, t := range transactions {
		balances := make(map[string]money.Amount, len(users))
		for _, u := range users {
			balances[u] = Balance(t, u)
		}

		for _, debtor := range users {
			debt := balances[debtor]
			if !debt.IsNegative() {
				continue
			}

			totalPositive := money.Zero()
			for _, p := range t.Participants {
				if p == debtor {
					continue
				}
				if b := balanceOf(t, balances, p); b.IsPositive() {
					totalPositive = totalPositive.Add(b)
				}
			}
			if totalPositive.IsZero() {
				continue
			}

			for _, creditor := range users {
				if creditor == debtor {
					continue
				}
				credit := balances[creditor]
				if !credit.IsPositive() {
					continue
				}
				share := credit.Div(totalPositive).Mul(debt.Abs())
				matrix.add(debtor, creditor, share)
			}
		}
	}

	return matrix
}

// balanceOf reads a precomputed balance, falling back to computing it for
// participants that are not in the registered user list.
func balanceOf(t *models.Transaction, balances map[string]money.Amount, userID string) money.Amount {
	if b, ok := balances[userID]; ok {
		return b
	}
	return Balance(t, userID)
}

// CounterpartyBalances derives the net position of userID against every
// other user from the pairwise matrix. A positive entry means the other user
// owes userID; negative means userID owes them. Only exact zeros are dropped.
func CounterpartyBalances(matrix Matrix, users []string, userID string) map[string]money.Amount {
	net := make(map[string]money.Amount)
	for _, other := range users {
		if other == userID {
			continue
		}
		owedByOther := matrix.Owed(other, userID)
		owedToOther := matrix.Owed(userID, other)
		if diff := owedByOther.Sub(owedToOther); !diff.IsZero() {
			net[other] = diff
		}
	}
	return net
}
