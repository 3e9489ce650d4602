// Package chain wraps the ledger RPC surface the pipeline needs: a fresh
// blockhash per transaction and address lookup table resolution.
package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	lookup "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
)

type Client struct {
	rpc *rpc.Client
}

func NewClient(endpoint string) *Client {
	return &Client{rpc: rpc.New(endpoint)}
}

// LatestBlockhash returns a recent blockhash at processed commitment, the
// freshest reference the node will hand out.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("empty blockhash response")
	}
	return out.Value.Blockhash, nil
}

// LookupTable fetches the address list of one on-chain lookup table.
func (c *Client) LookupTable(ctx context.Context, address solana.PublicKey) (solana.PublicKeySlice, error) {
	state, err := lookup.GetAddressLookupTable(ctx, c.rpc, address)
	if err != nil {
		return nil, fmt.Errorf("lookup table %s: %w", address, err)
	}
	return state.Addresses, nil
}
