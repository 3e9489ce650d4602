// Package assembler turns a pair of chained quotes into one signed atomic
// transaction: compute budget, setup, balance snapshot, swap, profit check,
// relay tip. The profit check runs after the swap and the tip transfer is
// last, so the on-chain guard asserts realized profit for the whole bundle
// or the runtime rolls everything back.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"golang.org/x/sync/errgroup"

	"github.com/thescopedao/solana_arb_bot/core/arbcheck"
	"github.com/thescopedao/solana_arb_bot/core/jupiter"
	"github.com/thescopedao/solana_arb_bot/core/wallet"
)

// ErrBelowThreshold means the round trip does not clear the configured
// minimum gross profit; the cycle is skipped without building anything.
var ErrBelowThreshold = errors.New("assembler: gross diff below profit threshold")

// Ledger is the slice of chain RPC the assembler depends on.
type Ledger interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	LookupTable(ctx context.Context, address solana.PublicKey) (solana.PublicKeySlice, error)
}

// InstructionFetcher exchanges a merged quote for executable instructions.
type InstructionFetcher interface {
	GetSwapInstructions(ctx context.Context, req *jupiter.SwapInstructionsRequest) (*jupiter.SwapInstructionsResponse, error)
}

// TipAccountFunc picks the relay tip account to pay this cycle.
type TipAccountFunc func() solana.PublicKey

// Params are the per-cycle tunables, re-read from config on every cycle so
// hot reload takes effect without a restart.
type Params struct {
	ProfitThreshold uint64
	TipRate         float64
	TokenAccount    solana.PublicKey // monitored associated token account
	Mint            solana.PublicKey // monitored mint, leg 0 input
}

// Build is the assembled, signed output of one profitable cycle.
type Build struct {
	Tx        *solana.Transaction
	GrossDiff uint64
	Tip       uint64
	MinProfit uint64
}

type Assembler struct {
	fetcher    InstructionFetcher
	ledger     Ledger
	signer     wallet.Signer
	guard      arbcheck.Program
	tipAccount TipAccountFunc
}

func New(fetcher InstructionFetcher, ledger Ledger, signer wallet.Signer, guard arbcheck.Program, tipAccount TipAccountFunc) *Assembler {
	return &Assembler{
		fetcher:    fetcher,
		ledger:     ledger,
		signer:     signer,
		guard:      guard,
		tipAccount: tipAccount,
	}
}

// Tip is the relay's share of the gross profit, floored.
func Tip(grossDiff uint64, tipRate float64) uint64 {
	return uint64(math.Floor(float64(grossDiff) * tipRate))
}

// GrossDiff computes leg1 out minus leg0 in, or ErrBelowThreshold when the
// round trip is not strictly above the threshold. Equality skips: the guard
// requires profit ≥ tip + threshold, which a diff of exactly threshold can
// never satisfy after the tip is carved out.
func GrossDiff(rt *jupiter.RoundTrip, threshold uint64) (uint64, error) {
	out1, err := rt.Quote1.OutAmountLamports()
	if err != nil {
		return 0, err
	}
	if out1 <= rt.Params.Amount {
		return 0, ErrBelowThreshold
	}
	diff := out1 - rt.Params.Amount
	if diff <= threshold {
		return 0, ErrBelowThreshold
	}
	return diff, nil
}

// Assemble runs the full build: profit gate, merged swap request,
// instruction planning, lookup table resolution, compile and sign.
func (a *Assembler) Assemble(ctx context.Context, rt *jupiter.RoundTrip, p Params) (*Build, error) {
	grossDiff, err := GrossDiff(rt, p.ProfitThreshold)
	if err != nil {
		return nil, err
	}
	tip := Tip(grossDiff, p.TipRate)

	merged := MergeQuotes(rt, tip)
	swapResp, err := a.fetcher.GetSwapInstructions(ctx, &jupiter.SwapInstructionsRequest{
		UserPublicKey:                 a.signer.PublicKey().String(),
		WrapAndUnwrapSol:              false,
		UseSharedAccounts:             false,
		ComputeUnitPriceMicroLamports: 1,
		DynamicComputeUnitLimit:       true,
		SkipUserAccountsRpcCalls:      true,
		QuoteResponse:                 merged,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch swap instructions: %w", err)
	}

	minProfit := tip + p.ProfitThreshold
	ixs, err := a.planInstructions(swapResp, p, tip, minProfit)
	if err != nil {
		return nil, err
	}

	tables, err := a.resolveTables(ctx, swapResp.AddressLookupTableAddresses)
	if err != nil {
		return nil, err
	}

	blockhash, err := a.ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(a.signer.PublicKey())}
	if len(tables) > 0 {
		opts = append(opts, solana.TransactionAddressTables(tables))
	}
	tx, err := solana.NewTransaction(ixs, blockhash, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile transaction: %w", err)
	}
	if err := a.signer.Sign(tx); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	return &Build{Tx: tx, GrossDiff: grossDiff, Tip: tip, MinProfit: minProfit}, nil
}

// MergeQuotes folds both legs into one virtual route. The forced output of
// principal + tip makes the router build a swap that must return at least
// that much; anything above it is the bot's realized profit.
func MergeQuotes(rt *jupiter.RoundTrip, tip uint64) *jupiter.QuoteResponse {
	merged := *rt.Quote0
	target := strconv.FormatUint(rt.Params.Amount+tip, 10)

	merged.OutputMint = rt.Quote1.OutputMint
	merged.OutAmount = target
	merged.OtherAmountThreshold = target
	merged.PriceImpactPct = "0"

	merged.RoutePlan = make([]jupiter.RoutePlan, 0, len(rt.Quote0.RoutePlan)+len(rt.Quote1.RoutePlan))
	merged.RoutePlan = append(merged.RoutePlan, rt.Quote0.RoutePlan...)
	merged.RoutePlan = append(merged.RoutePlan, rt.Quote1.RoutePlan...)

	return &merged
}

// planInstructions lays out the transaction in the one order that keeps the
// guard sound: snapshot immediately before the swap, check immediately
// after, tip last.
func (a *Assembler) planInstructions(swapResp *jupiter.SwapInstructionsResponse, p Params, tip, minProfit uint64) ([]solana.Instruction, error) {
	user := a.signer.PublicKey()

	ixs := make([]solana.Instruction, 0, len(swapResp.SetupInstructions)+5)

	ixs = append(ixs, computebudget.NewSetComputeUnitLimitInstruction(swapResp.ComputeUnitLimit).Build())

	for i := range swapResp.SetupInstructions {
		ix, err := swapResp.SetupInstructions[i].Decode()
		if err != nil {
			return nil, fmt.Errorf("decode setup instruction %d: %w", i, err)
		}
		ixs = append(ixs, ix)
	}

	saveIx, err := a.guard.SaveBalanceInstruction(user, p.TokenAccount, p.Mint)
	if err != nil {
		return nil, fmt.Errorf("build save_balance: %w", err)
	}
	ixs = append(ixs, saveIx)

	swapIx, err := swapResp.SwapInstruction.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode swap instruction: %w", err)
	}
	ixs = append(ixs, swapIx)

	checkIx, err := a.guard.CheckProfitInstruction(user, p.TokenAccount, p.Mint, minProfit)
	if err != nil {
		return nil, fmt.Errorf("build check_profit: %w", err)
	}
	ixs = append(ixs, checkIx)

	ixs = append(ixs, system.NewTransferInstruction(tip, user, a.tipAccount()).Build())

	return ixs, nil
}

// resolveTables fetches every referenced lookup table concurrently; a
// single miss aborts the build.
func (a *Assembler) resolveTables(ctx context.Context, addresses []string) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(addresses))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, address := range addresses {
		address := address
		g.Go(func() error {
			pk, err := solana.PublicKeyFromBase58(address)
			if err != nil {
				return fmt.Errorf("parse lookup table address %q: %w", address, err)
			}
			list, err := a.ledger.LookupTable(gctx, pk)
			if err != nil {
				return err
			}
			mu.Lock()
			tables[pk] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tables, nil
}
