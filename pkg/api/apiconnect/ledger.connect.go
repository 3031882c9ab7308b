// Package apiconnect wires the LedgerService messages in package api to
// Connect handlers and clients.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// These constants are the fully-qualified names of the RPCs defined in this
// package. They're exposed at runtime as Spec.Procedure and as the final two
// segments of the HTTP route.
const (
	LedgerServiceAddUserProcedure              = "/splitledger.v1.LedgerService/AddUser"
	LedgerServiceGetUserProcedure              = "/splitledger.v1.LedgerService/GetUser"
	LedgerServiceListUsersProcedure            = "/splitledger.v1.LedgerService/ListUsers"
	LedgerServiceAddTransactionProcedure       = "/splitledger.v1.LedgerService/AddTransaction"
	LedgerServiceGetTransactionProcedure       = "/splitledger.v1.LedgerService/GetTransaction"
	LedgerServiceListUserTransactionsProcedure = "/splitledger.v1.LedgerService/ListUserTransactions"
	LedgerServiceGetBalancesProcedure          = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceGetUserBalanceProcedure       = "/splitledger.v1.LedgerService/GetUserBalance"
	LedgerServiceGetSettlementsProcedure       = "/splitledger.v1.LedgerService/GetSettlements"
)

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient interface {
	AddUser(context.Context, *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	AddTransaction(context.Context, *connect.Request[api.AddTransactionRequest]) (*connect.Response[api.AddTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error)
	ListUserTransactions(context.Context, *connect.Request[api.ListUserTransactionsRequest]) (*connect.Response[api.ListUserTransactionsResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetUserBalance(context.Context, *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error)
	GetSettlements(context.Context, *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error)
}

// NewLedgerServiceClient constructs a client for the
// splitledger.v1.LedgerService service. Messages are sent as JSON.
//
// The URL supplied here should be the base URL for the Connect server
// (for example, http://api.acme.com or https://acme.com/grpc).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &ledgerServiceClient{
		addUser: connect.NewClient[api.AddUserRequest, api.AddUserResponse](
			httpClient, baseURL+LedgerServiceAddUserProcedure, opts...),
		getUser: connect.NewClient[api.GetUserRequest, api.GetUserResponse](
			httpClient, baseURL+LedgerServiceGetUserProcedure, opts...),
		listUsers: connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](
			httpClient, baseURL+LedgerServiceListUsersProcedure, opts...),
		addTransaction: connect.NewClient[api.AddTransactionRequest, api.AddTransactionResponse](
			httpClient, baseURL+LedgerServiceAddTransactionProcedure, opts...),
		getTransaction: connect.NewClient[api.GetTransactionRequest, api.GetTransactionResponse](
			httpClient, baseURL+LedgerServiceGetTransactionProcedure, opts...),
		listUserTransactions: connect.NewClient[api.ListUserTransactionsRequest, api.ListUserTransactionsResponse](
			httpClient, baseURL+LedgerServiceListUserTransactionsProcedure, opts...),
		getBalances: connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](
			httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getUserBalance: connect.NewClient[api.GetUserBalanceRequest, api.GetUserBalanceResponse](
			httpClient, baseURL+LedgerServiceGetUserBalanceProcedure, opts...),
		getSettlements: connect.NewClient[api.GetSettlementsRequest, api.GetSettlementsResponse](
			httpClient, baseURL+LedgerServiceGetSettlementsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	addUser              *connect.Client[api.AddUserRequest, api.AddUserResponse]
	getUser              *connect.Client[api.GetUserRequest, api.GetUserResponse]
	listUsers            *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	addTransaction       *connect.Client[api.AddTransactionRequest, api.AddTransactionResponse]
	getTransaction       *connect.Client[api.GetTransactionRequest, api.GetTransactionResponse]
	listUserTransactions *connect.Client[api.ListUserTransactionsRequest, api.ListUserTransactionsResponse]
	getBalances          *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getUserBalance       *connect.Client[api.GetUserBalanceRequest, api.GetUserBalanceResponse]
	getSettlements       *connect.Client[api.GetSettlementsRequest, api.GetSettlementsResponse]
}

func (c *ledgerServiceClient) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error) {
	return c.addUser.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddTransaction(ctx context.Context, req *connect.Request[api.AddTransactionRequest]) (*connect.Response[api.AddTransactionResponse], error) {
	return c.addTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListUserTransactions(ctx context.Context, req *connect.Request[api.ListUserTransactionsRequest]) (*connect.Response[api.ListUserTransactionsResponse], error) {
	return c.listUserTransactions.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetUserBalance(ctx context.Context, req *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error) {
	return c.getUserBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	return c.getSettlements.CallUnary(ctx, req)
}

// LedgerServiceHandler is an implementation of the splitledger.v1.LedgerService service.
type LedgerServiceHandler interface {
	AddUser(context.Context, *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	AddTransaction(context.Context, *connect.Request[api.AddTransactionRequest]) (*connect.Response[api.AddTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error)
	ListUserTransactions(context.Context, *connect.Request[api.ListUserTransactionsRequest]) (*connect.Response[api.ListUserTransactionsResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetUserBalance(context.Context, *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error)
	GetSettlements(context.Context, *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LedgerServiceAddUserProcedure,
		connect.NewUnaryHandler(LedgerServiceAddUserProcedure, svc.AddUser, opts...))
	mux.Handle(LedgerServiceGetUserProcedure,
		connect.NewUnaryHandler(LedgerServiceGetUserProcedure, svc.GetUser, opts...))
	mux.Handle(LedgerServiceListUsersProcedure,
		connect.NewUnaryHandler(LedgerServiceListUsersProcedure, svc.ListUsers, opts...))
	mux.Handle(LedgerServiceAddTransactionProcedure,
		connect.NewUnaryHandler(LedgerServiceAddTransactionProcedure, svc.AddTransaction, opts...))
	mux.Handle(LedgerServiceGetTransactionProcedure,
		connect.NewUnaryHandler(LedgerServiceGetTransactionProcedure, svc.GetTransaction, opts...))
	mux.Handle(LedgerServiceListUserTransactionsProcedure,
		connect.NewUnaryHandler(LedgerServiceListUserTransactionsProcedure, svc.ListUserTransactions, opts...))
	mux.Handle(LedgerServiceGetBalancesProcedure,
		connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(LedgerServiceGetUserBalanceProcedure,
		connect.NewUnaryHandler(LedgerServiceGetUserBalanceProcedure, svc.GetUserBalance, opts...))
	mux.Handle(LedgerServiceGetSettlementsProcedure,
		connect.NewUnaryHandler(LedgerServiceGetSettlementsProcedure, svc.GetSettlements, opts...))

	return "/" + LedgerServiceName + "/", mux
}
