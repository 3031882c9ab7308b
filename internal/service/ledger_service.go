// Package service implements the Connect LedgerService on top of a ledger.
package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	ledger    *ledger.Ledger
	publisher events.Publisher
}

// NewLedgerService creates a new LedgerService. A nil publisher discards
// events.
func NewLedgerService(l *ledger.Ledger, publisher events.Publisher) *LedgerService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LedgerService{ledger: l, publisher: publisher}
}

// publish announces a mutation. Failures are logged and never returned to the
// caller; the mutation has already been committed.
func (s *LedgerService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event",
			"type", e.Type,
			"user_id", e.UserID,
			"transaction_id", e.TransactionID,
			"error", err,
		)
	}
}

// AddUser registers a new user.
func (s *LedgerService) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error) {
	slog.Info("AddUser request received", "name", req.Msg.Name)

	user, err := s.ledger.AddUser(ctx, req.Msg.Name, req.Msg.Contact)
	if err != nil {
		slog.Error("AddUser failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("User created", "user_id", user.ID)
	s.publish(ctx, events.UserAdded(user))

	return connect.NewResponse(&api.AddUserResponse{User: toAPIUser(user)}), nil
}

// GetUser retrieves a user by ID.
func (s *LedgerService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	slog.Info("GetUser request received", "user_id", req.Msg.UserID)

	user, err := s.ledger.GetUser(req.Msg.UserID)
	if err != nil {
		slog.Error("GetUser failed", "user_id", req.Msg.UserID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetUserResponse{User: toAPIUser(user)}), nil
}

// ListUsers returns every user in registration order.
func (s *LedgerService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	slog.Info("ListUsers request received")

	users := s.ledger.ListUsers()
	out := make([]api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}

	slog.Info("ListUsers successful", "count", len(users))

	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}

// AddTransaction records a new expense.
func (s *LedgerService) AddTransaction(ctx context.Context, req *connect.Request[api.AddTransactionRequest]) (*connect.Response[api.AddTransactionResponse], error) {
	slog.Info("AddTransaction request received",
		"description", req.Msg.Description,
		"payers_count", len(req.Msg.Payers),
		"participants_count", len(req.Msg.Participants),
		"split_rule", req.Msg.SplitRule,
	)

	payers, err := parseAmounts("payers", req.Msg.Payers)
	if err != nil {
		slog.Error("AddTransaction failed", "error", err)
		return nil, connectError(err)
	}
	split, err := parseSplitRule(req.Msg.SplitRule, req.Msg.SplitDetails)
	if err != nil {
		slog.Error("AddTransaction failed", "error", err)
		return nil, connectError(err)
	}

	tx, err := s.ledger.AddTransaction(ctx, req.Msg.Description, payers, req.Msg.Participants, split)
	if err != nil {
		slog.Error("AddTransaction failed", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Transaction created",
		"transaction_id", tx.ID,
		"total", tx.TotalAmount().String(),
		"split_rule", tx.Split.Kind().String(),
	)
	s.publish(ctx, events.TransactionAdded(tx))

	return connect.NewResponse(&api.AddTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// GetTransaction retrieves a transaction by ID.
func (s *LedgerService) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	slog.Info("GetTransaction request received", "transaction_id", req.Msg.TransactionID)

	tx, err := s.ledger.GetTransaction(req.Msg.TransactionID)
	if err != nil {
		slog.Error("GetTransaction failed", "transaction_id", req.Msg.TransactionID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// ListUserTransactions returns the transactions a user pays for or shares.
func (s *LedgerService) ListUserTransactions(ctx context.Context, req *connect.Request[api.ListUserTransactionsRequest]) (*connect.Response[api.ListUserTransactionsResponse], error) {
	slog.Info("ListUserTransactions request received", "user_id", req.Msg.UserID)

	txs := s.ledger.ListUserTransactions(req.Msg.UserID)

	slog.Info("ListUserTransactions successful", "user_id", req.Msg.UserID, "count", len(txs))

	return connect.NewResponse(&api.ListUserTransactionsResponse{
		Transactions: toAPITransactions(txs),
	}), nil
}

// GetBalances returns the pairwise debt matrix.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received")

	matrix := s.ledger.GetBalances()

	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIMatrix(matrix)}), nil
}

// GetUserBalance returns a user's net position against every counterparty.
func (s *LedgerService) GetUserBalance(ctx context.Context, req *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error) {
	slog.Info("GetUserBalance request received", "user_id", req.Msg.UserID)

	balances, err := s.ledger.GetUserBalance(req.Msg.UserID)
	if err != nil {
		slog.Error("GetUserBalance failed", "user_id", req.Msg.UserID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetUserBalanceResponse{
		UserID:   req.Msg.UserID,
		Balances: formatAmounts(balances),
	}), nil
}

// GetSettlements returns net balances and the payments that settle them.
func (s *LedgerService) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	slog.Info("GetSettlements request received")

	// Settle the same snapshot of net balances that is returned
	net := s.ledger.GetNetBalances()
	settlements := calculator.SimplifySettlements(net)

	slog.Info("GetSettlements successful", "settlements_count", len(settlements))

	return connect.NewResponse(&api.GetSettlementsResponse{
		NetBalances: toAPINetBalances(net),
		Settlements: toAPISettlements(settlements),
	}), nil
}
