// Package api defines the request and response messages of the
// splitledger.v1.LedgerService RPC service.
//
// Amounts are decimal strings. Inputs accept any decimal literal; outputs
// are rounded to 16 fractional digits with trailing zeros trimmed.
package api

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Transaction struct {
	ID           string            `json:"id"`
	Description  string            `json:"description"`
	CreatedAt    time.Time         `json:"created_at"`
	Payers       map[string]string `json:"payers"`
	Participants []string          `json:"participants"`
	// SplitRule is "equal", "percentage" or "exact".
	SplitRule    string            `json:"split_rule"`
	SplitDetails map[string]string `json:"split_details,omitempty"`
	TotalAmount  string            `json:"total_amount"`
}

type NetBalance struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// Settlement is a suggested payment from one user to another.
type Settlement struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type AddUserRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

type AddUserResponse struct {
	User User `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type AddTransactionRequest struct {
	Description  string            `json:"description"`
	Payers       map[string]string `json:"payers"`
	Participants []string          `json:"participants"`
	// SplitRule defaults to "equal" when empty.
	SplitRule    string            `json:"split_rule,omitempty"`
	SplitDetails map[string]string `json:"split_details,omitempty"`
}

type AddTransactionResponse struct {
	Transaction Transaction `json:"transaction"`
}

type GetTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
}

type GetTransactionResponse struct {
	Transaction Transaction `json:"transaction"`
}

type ListUserTransactionsRequest struct {
	UserID string `json:"user_id"`
}

type ListUserTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type GetBalancesRequest struct{}

// GetBalancesResponse holds the pairwise matrix: Balances[debtor][creditor]
// is what debtor owes creditor.
type GetBalancesResponse struct {
	Balances map[string]map[string]string `json:"balances"`
}

type GetUserBalanceRequest struct {
	UserID string `json:"user_id"`
}

// GetUserBalanceResponse maps each counterparty to a signed amount: positive
// means the counterparty owes the user, negative means the user owes the
// counterparty. Settled counterparties are omitted.
type GetUserBalanceResponse struct {
	UserID   string            `json:"user_id"`
	Balances map[string]string `json:"balances"`
}

type GetSettlementsRequest struct{}

type GetSettlementsResponse struct {
	NetBalances []NetBalance `json:"net_balances"`
	Settlements []Settlement `json:"settlements"`
}
