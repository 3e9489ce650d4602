package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client talks to the Jupiter-style routing service.
type Client struct {
	quoteURL           string
	swapInstructionURL string
	httpClient         *http.Client
}

func NewClient(quoteURL, swapInstructionURL string) *Client {
	return &Client{
		quoteURL:           quoteURL,
		swapInstructionURL: swapInstructionURL,
		httpClient:         &http.Client{Timeout: defaultTimeout},
	}
}

// GetQuote fetches one quote for a fixed input amount.
func (c *Client) GetQuote(ctx context.Context, params QuoteParams) (*QuoteResponse, error) {
	query := url.Values{}
	query.Set("inputMint", params.InputMint)
	query.Set("outputMint", params.OutputMint)
	query.Set("amount", strconv.FormatUint(params.Amount, 10))
	query.Set("onlyDirectRoutes", strconv.FormatBool(params.OnlyDirectRoutes))
	query.Set("slippageBps", strconv.Itoa(params.SlippageBps))
	query.Set("maxAccounts", strconv.Itoa(params.MaxAccounts))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

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
		return nil, fmt.Errorf("quote status %s, %s", res.Status, string(body))
	}

	var quote QuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, err
	}

	return &quote, nil
}

// GetSwapInstructions exchanges a quote for executable instructions.
func (c *Client) GetSwapInstructions(ctx context.Context, swapReq *SwapInstructionsRequest) (*SwapInstructionsResponse, error) {
	bydata, err := json.Marshal(swapReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.swapInstructionURL, bytes.NewReader(bydata))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

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
		return nil, fmt.Errorf("swap-instructions status %s, %s", res.Status, string(body))
	}

	var instructions SwapInstructionsResponse
	if err := json.Unmarshal(body, &instructions); err != nil {
		return nil, err
	}

	return &instructions, nil
}
