package service

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/api"
)

// connectError maps ledger errors to Connect codes.
func connectError(err error) *connect.Error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrReferential):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ledger.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// parseAmounts converts wire decimal strings keyed by user ID.
func parseAmounts(field string, values map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(values))
	for userID, s := range values {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%s] is not a decimal: %q", models.ErrValidation, field, userID, s)
		}
		out[userID] = d
	}
	return out, nil
}

func parseSplitRule(rule string, details map[string]string) (models.SplitRule, error) {
	kind, err := models.ParseSplitKind(rule)
	if err != nil {
		return nil, err
	}
	values, err := parseAmounts("split_details", details)
	if err != nil {
		return nil, err
	}
	return models.NewSplitRule(kind, values)
}

func formatDecimals(values map[string]decimal.Decimal) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for userID, d := range values {
		out[userID] = d.String()
	}
	return out
}

func formatAmounts(values map[string]money.Amount) map[string]string {
	out := make(map[string]string, len(values))
	for userID, a := range values {
		out[userID] = a.String()
	}
	return out
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Name:      u.Name,
		Contact:   u.Contact,
		CreatedAt: u.CreatedAt,
	}
}

func toAPITransaction(t *models.Transaction) api.Transaction {
	return api.Transaction{
		ID:           t.ID,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
		Payers:       formatDecimals(t.Payers),
		Participants: t.Participants,
		SplitRule:    t.Split.Kind().String(),
		SplitDetails: formatDecimals(t.Split.Details()),
		TotalAmount:  t.TotalAmount().String(),
	}
}

func toAPITransactions(txs []*models.Transaction) []api.Transaction {
	out := make([]api.Transaction, len(txs))
	for i, t := range txs {
		out[i] = toAPITransaction(t)
	}
	return out
}

func toAPIMatrix(m calculator.Matrix) map[string]map[string]string {
	out := make(map[string]map[string]string, len(m))
	for debtor, row := range m {
		out[debtor] = formatAmounts(row)
	}
	return out
}

func toAPINetBalances(balances []calculator.NetBalance) []api.NetBalance {
	out := make([]api.NetBalance, len(balances))
	for i, b := range balances {
		out[i] = api.NetBalance{UserID: b.UserID, Amount: b.Amount.String()}
	}
	return out
}

func toAPISettlements(settlements []calculator.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = api.Settlement{From: s.From, To: s.To, Amount: s.Amount.String()}
	}
	return out
}
