package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.UserAdded()
	m.UserAdded()
	m.TransactionAdded(models.SplitEqual)
	m.TransactionAdded(models.SplitExact)
	m.TransactionAdded(models.SplitExact)
	m.BalanceCacheHit()
	m.BalanceRecomputed(3*time.Millisecond, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.usersAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsAdded.WithLabelValues("equal")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactionsAdded.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputes))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.recomputeTransactions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.recomputeSeconds))
}

func TestInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	const procedure = "/splitledger.test.Echo/Echo"
	handler := connect.NewUnaryHandler(procedure,
		func(_ context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
			if req.Msg.UserID == "" {
				return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user_id required"))
			}
			return connect.NewResponse(&api.GetUserResponse{User: api.User{ID: req.Msg.UserID}}), nil
		},
		connect.WithCodec(api.JSONCodec{}),
		connect.WithInterceptors(m.Interceptor()),
	)

	mux := http.NewServeMux()
	mux.Handle(procedure, handler)
	mux.Handle("/metrics", Handler(reg))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connect.NewClient[api.GetUserRequest, api.GetUserResponse](
		server.Client(), server.URL+procedure, connect.WithCodec(api.JSONCodec{}))

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&api.GetUserRequest{UserID: "u1"}))
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.Msg.User.ID)

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&api.GetUserRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues(procedure, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues(procedure, "invalid_argument")))

	res, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "splitledger_rpc_requests_total")
	assert.Contains(t, string(body), "splitledger_rpc_duration_seconds")
}
