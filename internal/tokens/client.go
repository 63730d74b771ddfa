// Package tokens talks JSON-RPC to a Solana node for the two chain reads the
// engine needs: mint decimals and a wallet's balance of a mint.
package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/money"
)

// Client is a minimal Solana JSON-RPC client.
type Client struct {
	http   *http.Client
	rpcURL string
	nextID atomic.Int64

	// Mint decimals are immutable on chain, so one lookup per mint is
	// enough for the process lifetime.
	mu       sync.RWMutex
	decimals map[string]int32
}

// NewClient builds a client against the given RPC endpoint.
func NewClient(rpcURL string, timeout time.Duration) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		rpcURL:   rpcURL,
		decimals: make(map[string]int32),
	}, nil
}

func (c *Client) cachedDecimals(mint string) (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decimals[mint]
	return d, ok
}

func (c *Client) storeDecimals(mint string, d int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decimals[mint] = d
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

type tokenSupplyResult struct {
	Value struct {
		Decimals int32 `json:"decimals"`
	} `json:"value"`
}

// TokenInfo resolves on-chain metadata for a mint. Symbol falls back to the
// provided hint when the chain has nothing better; decimals always come from
// the chain.
func (c *Client) TokenInfo(ctx context.Context, mint, symbolHint string) (money.TokenRef, error) {
	if mint == "" {
		return money.TokenRef{}, fmt.Errorf("mint address is required")
	}

	symbol := symbolHint
	if symbol == "" {
		symbol = shortMint(mint)
	}

	if d, ok := c.cachedDecimals(mint); ok {
		return money.TokenRef{Address: mint, Symbol: symbol, Decimals: d}, nil
	}

	var supply tokenSupplyResult
	if err := c.call(ctx, "getTokenSupply", []any{mint}, &supply); err != nil {
		return money.TokenRef{}, fmt.Errorf("token info for %s: %w", mint, err)
	}
	c.storeDecimals(mint, supply.Value.Decimals)

	return money.TokenRef{Address: mint, Symbol: symbol, Decimals: supply.Value.Decimals}, nil
}

type tokenAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount struct {
							UIAmountString string `json:"uiAmountString"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// TokenBalance sums the wallet's balance of a mint across all its token
// accounts, in display units.
func (c *Client) TokenBalance(ctx context.Context, wallet, mint string) (decimal.Decimal, error) {
	if wallet == "" || mint == "" {
		return decimal.Zero, fmt.Errorf("wallet and mint are required")
	}

	params := []any{
		wallet,
		map[string]string{"mint": mint},
		map[string]string{"encoding": "jsonParsed"},
	}

	var accounts tokenAccountsResult
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &accounts); err != nil {
		return decimal.Zero, fmt.Errorf("balance of %s for %s: %w", mint, wallet, err)
	}

	total := decimal.Zero
	for _, entry := range accounts.Value {
		raw := entry.Account.Data.Parsed.Info.TokenAmount.UIAmountString
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
		}
		total = total.Add(amount)
	}
	return total, nil
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + ".." + mint[len(mint)-4:]
}
