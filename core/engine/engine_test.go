package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/thescopedao/solana_arb_bot/config"
	"github.com/thescopedao/solana_arb_bot/core/assembler"
	"github.com/thescopedao/solana_arb_bot/core/jupiter"
	"github.com/thescopedao/solana_arb_bot/core/model"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "engine-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	logger.Init(filepath.Join(dir, "test.log"))
	logger.SetLogLevel("error")

	// no config file in dir: defaults and env only
	if err := config.LoadConf(dir + "/"); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

type stubQuotes struct {
	mu        sync.Mutex
	calls     int
	failCalls int // first N calls fail
}

func (s *stubQuotes) FetchRoundTrip(_ context.Context, params jupiter.QuoteParams) (*jupiter.RoundTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failCalls {
		return nil, errors.New("upstream timeout")
	}
	return &jupiter.RoundTrip{
		Quote0: &jupiter.QuoteResponse{OutAmount: "1"},
		Quote1: &jupiter.QuoteResponse{OutAmount: "1"},
		Params: params,
	}, nil
}

func (s *stubQuotes) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubBuilder struct {
	build *assembler.Build
	err   error
}

func (b *stubBuilder) Assemble(context.Context, *jupiter.RoundTrip, assembler.Params) (*assembler.Build, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.build, nil
}

type stubSubmitter struct {
	bundleID string
	err      error
}

func (s *stubSubmitter) SendBundle(context.Context, *solana.Transaction) (string, error) {
	return s.bundleID, s.err
}

func TestFailedCycleDoesNotPoisonTheNext(t *testing.T) {
	quotes := &stubQuotes{failCalls: 1}
	e := New(quotes, &stubBuilder{err: assembler.ErrBelowThreshold}, &stubSubmitter{}, solana.NewWallet().PublicKey())

	e.runCycle(context.Background())
	if got := e.Status(); got.Outcome != model.OutcomeFailed || got.Reason != "fetch_quotes" {
		t.Fatalf("first cycle status = %+v", got)
	}
	if e.failStreak != 1 {
		t.Fatalf("failStreak = %d, want 1", e.failStreak)
	}

	e.runCycle(context.Background())
	if got := e.Status(); got.Outcome != model.OutcomeSkipped || got.Reason != "below_threshold" {
		t.Fatalf("second cycle status = %+v", got)
	}
	if e.failStreak != 0 {
		t.Fatalf("failStreak = %d, want reset to 0", e.failStreak)
	}
}

func TestRunKeepsPollingThroughPersistentFailure(t *testing.T) {
	quotes := &stubQuotes{failCalls: 1 << 30}
	e := New(quotes, &stubBuilder{}, &stubSubmitter{}, solana.NewWallet().PublicKey())

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}

	// default interval is 200ms; a failing upstream must still be polled
	if got := quotes.callCount(); got < 2 {
		t.Fatalf("made %d cycles in 700ms, want at least 2", got)
	}
}

func TestSubmittedCycleSnapshot(t *testing.T) {
	build := &assembler.Build{
		Tx:        &solana.Transaction{},
		GrossDiff: 10_000,
		Tip:       5000,
		MinProfit: 8000,
	}
	e := New(&stubQuotes{}, &stubBuilder{build: build}, &stubSubmitter{bundleID: "bundle-xyz"}, solana.NewWallet().PublicKey())

	e.runCycle(context.Background())

	got := e.Status()
	if got.Outcome != model.OutcomeSubmitted || got.BundleID != "bundle-xyz" {
		t.Fatalf("status = %+v", got)
	}
	if got.GrossDiff != 10_000 || got.Tip != 5000 || got.MinProfit != 8000 {
		t.Fatalf("status amounts = %+v", got)
	}
}

func TestSubmitFailureEndsCycleOnly(t *testing.T) {
	build := &assembler.Build{Tx: &solana.Transaction{}}
	sub := &stubSubmitter{err: errors.New("bundle rejected")}
	e := New(&stubQuotes{}, &stubBuilder{build: build}, sub, solana.NewWallet().PublicKey())

	e.runCycle(context.Background())
	if got := e.Status(); got.Outcome != model.OutcomeFailed || got.Reason != "submit" {
		t.Fatalf("status = %+v", got)
	}

	sub.err = nil
	sub.bundleID = "bundle-after-recovery"
	e.runCycle(context.Background())
	if got := e.Status(); got.Outcome != model.OutcomeSubmitted {
		t.Fatalf("status after recovery = %+v", got)
	}
}

func TestCycleDelayBackoffBounds(t *testing.T) {
	dir := t.TempDir()
	conf := []byte("ArbConfig:\n  LoopIntervalMS: 100\n  MaxBackoffMS: 1000\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), conf, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := config.LoadConf(dir + "/"); err != nil {
		t.Fatalf("LoadConf: %v", err)
	}
	defer func() {
		// restore defaults for other tests
		restore := t.TempDir()
		if err := config.LoadConf(restore + "/"); err != nil {
			t.Fatalf("restore config: %v", err)
		}
	}()

	e := New(&stubQuotes{}, &stubBuilder{}, &stubSubmitter{}, solana.NewWallet().PublicKey())

	if got := e.cycleDelay(); got != 100*time.Millisecond {
		t.Fatalf("healthy delay = %v, want base interval", got)
	}

	e.failStreak = 1
	if got := e.cycleDelay(); got != 200*time.Millisecond {
		t.Fatalf("delay after 1 failure = %v, want 200ms", got)
	}

	e.failStreak = 10
	if got := e.cycleDelay(); got != time.Second {
		t.Fatalf("delay after 10 failures = %v, want the 1s cap", got)
	}
}
