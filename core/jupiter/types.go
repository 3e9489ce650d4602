package jupiter

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// QuoteParams are the query parameters for the quote endpoint.
type QuoteParams struct {
	InputMint        string
	OutputMint       string
	Amount           uint64
	OnlyDirectRoutes bool
	SlippageBps      int
	MaxAccounts      int
}

// QuoteResponse is the quote endpoint reply. Amounts come back as decimal
// strings, the Jupiter convention for u64 values.
type QuoteResponse struct {
	InputMint            string      `json:"inputMint"`
	InAmount             string      `json:"inAmount"`
	OutputMint           string      `json:"outputMint"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          int         `json:"slippageBps"`
	PlatformFee          interface{} `json:"platformFee"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RoutePlan `json:"routePlan"`
	ContextSlot          int64       `json:"contextSlot,omitempty"`
	TimeTaken            float64     `json:"timeTaken,omitempty"`
}

// RoutePlan is a single hop of the route the aggregator selected.
type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// OutAmountLamports parses the quoted output amount.
func (q *QuoteResponse) OutAmountLamports() (uint64, error) {
	v, err := strconv.ParseUint(q.OutAmount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse outAmount %q: %w", q.OutAmount, err)
	}
	return v, nil
}

// SwapInstructionsRequest is the body for the swap-instructions endpoint.
type SwapInstructionsRequest struct {
	UserPublicKey                 string         `json:"userPublicKey"`
	WrapAndUnwrapSol              bool           `json:"wrapAndUnwrapSol"`
	UseSharedAccounts             bool           `json:"useSharedAccounts"`
	ComputeUnitPriceMicroLamports int64          `json:"computeUnitPriceMicroLamports"`
	DynamicComputeUnitLimit       bool           `json:"dynamicComputeUnitLimit"`
	SkipUserAccountsRpcCalls      bool           `json:"skipUserAccountsRpcCalls"`
	QuoteResponse                 *QuoteResponse `json:"quoteResponse"`
}

// SwapInstructionsResponse carries the executable instructions for a quote.
type SwapInstructionsResponse struct {
	ComputeUnitLimit            uint32               `json:"computeUnitLimit"`
	SetupInstructions           []EncodedInstruction `json:"setupInstructions"`
	SwapInstruction             EncodedInstruction   `json:"swapInstruction"`
	CleanupInstruction          *EncodedInstruction  `json:"cleanupInstruction,omitempty"`
	AddressLookupTableAddresses []string             `json:"addressLookupTableAddresses"`
}

type EncodedAccount struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// EncodedInstruction is the wire form of one instruction: base58 program id,
// ordered account metas and base64 payload bytes.
type EncodedInstruction struct {
	ProgramID string           `json:"programId"`
	Accounts  []EncodedAccount `json:"accounts"`
	Data      string           `json:"data"`
}

// Decode converts the wire form into a ledger instruction.
func (e *EncodedInstruction) Decode() (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(e.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("parse programId %q: %w", e.ProgramID, err)
	}

	metas := make(solana.AccountMetaSlice, 0, len(e.Accounts))
	for _, acc := range e.Accounts {
		pk, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("parse account %q: %w", acc.Pubkey, err)
		}
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  pk,
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsWritable,
		})
	}

	data, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, fmt.Errorf("decode instruction data: %w", err)
	}

	return solana.NewInstruction(programID, metas, data), nil
}
