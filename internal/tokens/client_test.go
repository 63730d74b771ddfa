package tokens

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, handler func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64             `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenInfo(t *testing.T) {
	t.Parallel()

	srv := rpcServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		require.Equal(t, "getTokenSupply", method)
		return map[string]any{"value": map[string]any{"decimals": 5, "amount": "1000"}}, nil
	})

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	info, err := client.TokenInfo(context.Background(), "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "BONK")
	require.NoError(t, err)

	assert.Equal(t, int32(5), info.Decimals)
	assert.Equal(t, "BONK", info.Symbol)
}

func TestTokenInfoCachesDecimals(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := rpcServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		require.Equal(t, "getTokenSupply", method)
		calls++
		return map[string]any{"value": map[string]any{"decimals": 6}}, nil
	})

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	mint := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	first, err := client.TokenInfo(context.Background(), mint, "USDC")
	require.NoError(t, err)
	second, err := client.TokenInfo(context.Background(), mint, "usdc")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "decimals come from the cache on repeat lookups")
	assert.Equal(t, int32(6), first.Decimals)
	assert.Equal(t, int32(6), second.Decimals)
	assert.Equal(t, "usdc", second.Symbol, "symbol hint is still honored on cache hits")
}

func TestTokenInfoSymbolFallback(t *testing.T) {
	t.Parallel()

	srv := rpcServer(t, func(_ string, _ []json.RawMessage) (any, *rpcError) {
		return map[string]any{"value": map[string]any{"decimals": 9}}, nil
	})

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	info, err := client.TokenInfo(context.Background(), "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "")
	require.NoError(t, err)

	assert.Equal(t, "DezX..B263", info.Symbol)
}

func TestTokenBalanceSumsAccounts(t *testing.T) {
	t.Parallel()

	srv := rpcServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		require.Equal(t, "getTokenAccountsByOwner", method)
		account := func(amount string) map[string]any {
			return map[string]any{
				"account": map[string]any{
					"data": map[string]any{
						"parsed": map[string]any{
							"info": map[string]any{
								"tokenAmount": map[string]any{"uiAmountString": amount},
							},
						},
					},
				},
			}
		}
		return map[string]any{"value": []any{account("1.5"), account("2.25")}}, nil
	})

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	balance, err := client.TokenBalance(context.Background(), "wallet", "mint")
	require.NoError(t, err)

	assert.True(t, balance.Equal(decimal.RequireFromString("3.75")))
}

func TestTokenBalanceEmpty(t *testing.T) {
	t.Parallel()

	srv := rpcServer(t, func(_ string, _ []json.RawMessage) (any, *rpcError) {
		return map[string]any{"value": []any{}}, nil
	})

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	balance, err := client.TokenBalance(context.Background(), "wallet", "mint")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestRPCErrorSurfaces(t *testing.T) {
	t.Parallel()

	srv := rpcServer(t, func(_ string, _ []json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32602, Message: "invalid mint"}
	})

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.TokenInfo(context.Background(), "badmint", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mint")
}
