package jupiter

import (
	"context"
)

// RoundTrip is one cycle's pair of chained quotes: leg 0 sells the input
// mint, leg 1 buys it back with exactly leg 0's output. Immutable once
// fetched; the request params travel along because profit is computed
// against the original input amount.
type RoundTrip struct {
	Quote0 *QuoteResponse
	Quote1 *QuoteResponse
	Params QuoteParams
}

// FetchRoundTrip fetches both legs. The second leg depends on the first, so
// the calls are sequential; either failure aborts the whole fetch.
func (c *Client) FetchRoundTrip(ctx context.Context, params QuoteParams) (*RoundTrip, error) {
	quote0, err := c.GetQuote(ctx, params)
	if err != nil {
		return nil, err
	}

	leg1Amount, err := quote0.OutAmountLamports()
	if err != nil {
		return nil, err
	}

	quote1, err := c.GetQuote(ctx, QuoteParams{
		InputMint:        params.OutputMint,
		OutputMint:       params.InputMint,
		Amount:           leg1Amount,
		OnlyDirectRoutes: params.OnlyDirectRoutes,
		SlippageBps:      params.SlippageBps,
		MaxAccounts:      params.MaxAccounts,
	})
	if err != nil {
		return nil, err
	}

	return &RoundTrip{Quote0: quote0, Quote1: quote1, Params: params}, nil
}
