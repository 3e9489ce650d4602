// Package jito submits signed transactions to a block-builder relay as
// priority bundles. Acceptance only means the relay will consider the
// bundle; landing on the ledger is asynchronous and never awaited here.
package jito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	bundleURL  string
	httpClient *http.Client
}

func NewClient(bundleURL string) *Client {
	return &Client{
		bundleURL:  bundleURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type rpcRequest struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	bydata, err := json.Marshal(&rpcRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bundleURL, bytes.NewReader(bydata))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay status %s, %s", res.Status, string(body))
	}

	var rpcRes rpcResponse
	if err := json.Unmarshal(body, &rpcRes); err != nil {
		return nil, err
	}
	if rpcRes.Error != nil {
		return nil, fmt.Errorf("relay error %d: %s", rpcRes.Error.Code, rpcRes.Error.Message)
	}

	return rpcRes.Result, nil
}

// SendBundle submits the signed transaction as a single element bundle and
// returns the relay's bundle id.
func (c *Client) SendBundle(ctx context.Context, tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	encoded := base58.Encode(raw)

	result, err := c.call(ctx, "sendBundle", [][]string{{encoded}})
	if err != nil {
		return "", err
	}

	var bundleID string
	if err := json.Unmarshal(result, &bundleID); err != nil {
		return "", fmt.Errorf("parse bundle id: %w", err)
	}
	return bundleID, nil
}

// GetTipAccounts fetches the relay's current tip collection accounts.
func (c *Client) GetTipAccounts(ctx context.Context) ([]string, error) {
	result, err := c.call(ctx, "getTipAccounts", []interface{}{})
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, fmt.Errorf("parse tip accounts: %w", err)
	}
	return accounts, nil
}
