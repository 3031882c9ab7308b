package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func netBalances(pairs ...any) []NetBalance {
	out := make([]NetBalance, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, NetBalance{UserID: pairs[i].(string), Amount: money.MustParse(pairs[i+1].(string))})
	}
	return out
}

// applySettlements pays out every settlement and returns the resulting balances.
func applySettlements(balances []NetBalance, settlements []Settlement) map[string]money.Amount {
	after := make(map[string]money.Amount, len(balances))
	for _, b := range balances {
		after[b.UserID] = b.Amount
	}
	for _, s := range settlements {
		after[s.From] = after[s.From].Add(s.Amount)
		after[s.To] = after[s.To].Sub(s.Amount)
	}
	return after
}

func TestSimplifySettlements_DinnerScenario(t *testing.T) {
	users := []string{"A", "B", "C"}
	dinner := newTx(t, map[string]string{"A": "90"}, users, models.EqualSplit{})

	balances := NetBalances(users, []*models.Transaction{dinner})
	require.Len(t, balances, 3)
	assertAmount(t, "60", balances[0].Amount)
	assertAmount(t, "-30", balances[1].Amount)
	assertAmount(t, "-30", balances[2].Amount)

	settlements := SimplifySettlements(balances)
	require.Len(t, settlements, 2)

	// Equal debts keep registration order: B before C
	assert.Equal(t, "B", settlements[0].From)
	assert.Equal(t, "A", settlements[0].To)
	assertAmount(t, "30", settlements[0].Amount)
	assert.Equal(t, "C", settlements[1].From)
	assert.Equal(t, "A", settlements[1].To)
	assertAmount(t, "30", settlements[1].Amount)
}

func TestSimplifySettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances []NetBalance
		want     []Settlement
	}{
		{
			name:     "everyone settled",
			balances: netBalances("A", "0", "B", "0.004", "C", "-0.004"),
			want:     []Settlement{},
		},
		{
			name:     "no users",
			balances: nil,
			want:     []Settlement{},
		},
		{
			name:     "one debtor two creditors",
			balances: netBalances("A", "25", "B", "-40", "C", "15"),
			want: []Settlement{
				{From: "B", To: "A", Amount: money.MustParse("25")},
				{From: "B", To: "C", Amount: money.MustParse("15")},
			},
		},
		{
			name:     "chain collapses to direct payments",
			balances: netBalances("A", "-10", "B", "0", "C", "10"),
			want: []Settlement{
				{From: "A", To: "C", Amount: money.MustParse("10")},
			},
		},
		{
			name:     "only creditors left stops early",
			balances: netBalances("A", "10", "B", "5"),
			want:     []Settlement{},
		},
		{
			name:     "one cent payments are absorbed",
			balances: netBalances("A", "-0.01", "B", "0.01"),
			want:     []Settlement{},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: netBalances("A", "-5", "B", "-20", "C", "12", "D", "13"),
			want: []Settlement{
				{From: "B", To: "D", Amount: money.MustParse("13")},
				{From: "B", To: "C", Amount: money.MustParse("7")},
				{From: "A", To: "C", Amount: money.MustParse("5")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifySettlements(tt.balances)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].From, got[i].From, "settlement %d from", i)
				assert.Equal(t, tt.want[i].To, got[i].To, "settlement %d to", i)
				assert.True(t, got[i].Amount.Equal(tt.want[i].Amount),
					"settlement %d amount: want %s, got %s", i, tt.want[i].Amount, got[i].Amount)
			}
		})
	}
}

func TestSimplifySettlements_DoesNotMutateInput(t *testing.T) {
	balances := netBalances("A", "30", "B", "-30")
	SimplifySettlements(balances)
	assertAmount(t, "30", balances[0].Amount)
	assertAmount(t, "-30", balances[1].Amount)
}

func TestSimplifySettlements_ZeroesEveryone(t *testing.T) {
	users := []string{"ana", "ben", "cat", "dan", "eve"}
	txs := []*models.Transaction{
		newTx(t, map[string]string{"ana": "120"}, users, models.EqualSplit{}),
		newTx(t, map[string]string{"ben": "45.50", "cat": "10"}, []string{"ben", "cat", "dan"}, models.EqualSplit{}),
		newTx(t, map[string]string{"dan": "80"}, []string{"ana", "dan", "eve"},
			models.PercentageSplit{Percentages: decimals(map[string]string{"ana": "25", "dan": "25", "eve": "50"})}),
		newTx(t, map[string]string{"eve": "33.33"}, []string{"ben", "eve"},
			models.ExactSplit{Amounts: decimals(map[string]string{"ben": "20", "eve": "13.33"})}),
		newTx(t, map[string]string{"cat": "100"}, []string{"ana", "ben", "cat"}, models.EqualSplit{}),
	}

	balances := NetBalances(users, txs)
	settlements := SimplifySettlements(balances)
	require.NotEmpty(t, settlements)

	for user, remaining := range applySettlements(balances, settlements) {
		assert.True(t, remaining.WithinEpsilon(money.Zero()), "%s still has %s after settling", user, remaining)
	}

	for _, s := range settlements {
		assert.NotEqual(t, s.From, s.To)
		assert.True(t, s.Amount.ExceedsEpsilon(), "settlement %v is below one cent", s)
	}
}

func TestNetBalances_IgnoresUninvolvedTransactions(t *testing.T) {
	users := []string{"A", "B", "C"}
	txs := []*models.Transaction{
		newTx(t, map[string]string{"A": "10"}, []string{"A", "B"}, models.EqualSplit{}),
	}

	balances := NetBalances(users, txs)
	assertAmount(t, "5", balances[0].Amount)
	assertAmount(t, "-5", balances[1].Amount)
	assertAmount(t, "0", balances[2].Amount)
	assert.Equal(t, "C", balances[2].UserID)
}
