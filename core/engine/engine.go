// Package engine drives the cycle loop: fetch quotes, assemble, submit,
// sleep, repeat. Cycles never overlap and no per-cycle failure is fatal;
// the loop runs until the context is cancelled.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/thescopedao/solana_arb_bot/config"
	"github.com/thescopedao/solana_arb_bot/core/alikafka"
	"github.com/thescopedao/solana_arb_bot/core/assembler"
	"github.com/thescopedao/solana_arb_bot/core/jupiter"
	"github.com/thescopedao/solana_arb_bot/core/metrics"
	"github.com/thescopedao/solana_arb_bot/core/model"
	"github.com/thescopedao/solana_arb_bot/core/redis"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

type QuoteSource interface {
	FetchRoundTrip(ctx context.Context, params jupiter.QuoteParams) (*jupiter.RoundTrip, error)
}

type Builder interface {
	Assemble(ctx context.Context, rt *jupiter.RoundTrip, p assembler.Params) (*assembler.Build, error)
}

type Submitter interface {
	SendBundle(ctx context.Context, tx *solana.Transaction) (string, error)
}

type Engine struct {
	quotes    QuoteSource
	builder   Builder
	submitter Submitter
	user      solana.PublicKey

	statusMutex sync.RWMutex
	status      model.CycleStatus

	failStreak int
}

func New(quotes QuoteSource, builder Builder, submitter Submitter, user solana.PublicKey) *Engine {
	return &Engine{
		quotes:    quotes,
		builder:   builder,
		submitter: submitter,
		user:      user,
	}
}

// Status returns the last cycle snapshot.
func (e *Engine) Status() model.CycleStatus {
	e.statusMutex.RLock()
	defer e.statusMutex.RUnlock()
	return e.status
}

// Run loops until ctx is cancelled. The inter-cycle delay is measured from
// cycle completion, so the next fetch never starts while a cycle is still
// in flight.
func (e *Engine) Run(ctx context.Context) {
	for {
		e.runCycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(e.cycleDelay()):
		}
	}
}

// cycleDelay is the fixed loop interval, widened by bounded exponential
// back-off on consecutive failures when MaxBackoffMS is set. Default is
// off: a failing upstream is polled at the same fixed rate.
func (e *Engine) cycleDelay() time.Duration {
	cfg := config.GetArbConfig()
	delay := time.Duration(cfg.LoopIntervalMS) * time.Millisecond

	if cfg.MaxBackoffMS > 0 && e.failStreak > 0 {
		maxDelay := time.Duration(cfg.MaxBackoffMS) * time.Millisecond
		backoff := delay << uint(min(e.failStreak, 16))
		if backoff <= 0 || backoff > maxDelay {
			backoff = maxDelay
		}
		delay = backoff
	}

	return delay
}

func (e *Engine) runCycle(ctx context.Context) {
	start := time.Now()
	cfg := config.GetArbConfig()

	metrics.CyclesTotal.Inc()
	if redis.Enabled() {
		_ = redis.IncrCounter(redis.KeyCycles)
	}

	status := model.CycleStatus{StartedAt: start.Unix()}
	defer func() {
		status.DurationMS = time.Since(start).Milliseconds()
		metrics.CycleDuration.Observe(time.Since(start).Seconds())

		e.statusMutex.Lock()
		e.status = status
		e.statusMutex.Unlock()
	}()

	mint, err := solana.PublicKeyFromBase58(cfg.InputMint)
	if err != nil {
		e.failCycle(&status, "config", err)
		return
	}
	tokenAccount, _, err := solana.FindAssociatedTokenAddress(e.user, mint)
	if err != nil {
		e.failCycle(&status, "config", err)
		return
	}

	rt, err := e.quotes.FetchRoundTrip(ctx, jupiter.QuoteParams{
		InputMint:        cfg.InputMint,
		OutputMint:       cfg.OutputMint,
		Amount:           cfg.Amount,
		OnlyDirectRoutes: false,
		SlippageBps:      0,
		MaxAccounts:      int(cfg.MaxAccounts),
	})
	if err != nil {
		e.failCycle(&status, "fetch_quotes", err)
		return
	}

	build, err := e.builder.Assemble(ctx, rt, assembler.Params{
		ProfitThreshold: cfg.ProfitThreshold,
		TipRate:         cfg.TipRate,
		TokenAccount:    tokenAccount,
		Mint:            mint,
	})
	if errors.Is(err, assembler.ErrBelowThreshold) {
		e.failStreak = 0
		status.Outcome = model.OutcomeSkipped
		status.Reason = "below_threshold"
		metrics.CycleSkipsTotal.WithLabelValues("below_threshold").Inc()
		if redis.Enabled() {
			_ = redis.IncrCounter(redis.KeySkips)
		}
		logger.Logrus.Debug("profit below threshold, skipping")
		return
	}
	if err != nil {
		e.failCycle(&status, "assemble", err)
		return
	}

	status.GrossDiff = build.GrossDiff
	status.Tip = build.Tip
	status.MinProfit = build.MinProfit
	metrics.LastGrossDiff.Set(float64(build.GrossDiff))

	bundleID, err := e.submitter.SendBundle(ctx, build.Tx)
	if err != nil {
		metrics.SubmitErrorsTotal.Inc()
		e.failCycle(&status, "submit", err)
		return
	}

	e.failStreak = 0
	status.Outcome = model.OutcomeSubmitted
	status.BundleID = bundleID
	metrics.BundlesSubmittedTotal.Inc()
	if redis.Enabled() {
		_ = redis.IncrCounter(redis.KeySubmitted)
	}

	logger.Logrus.WithFields(logrus.Fields{
		"BundleID":  bundleID,
		"GrossDiff": build.GrossDiff,
		"Tip":       build.Tip,
		"Duration":  time.Since(start).String(),
	}).Info("bundle submitted")

	if alikafka.Enabled() {
		err := alikafka.PublishBundleEvent(model.BundleEvent{
			BundleID:   bundleID,
			InputMint:  cfg.InputMint,
			OutputMint: cfg.OutputMint,
			Amount:     cfg.Amount,
			GrossDiff:  build.GrossDiff,
			Tip:        build.Tip,
			MinProfit:  build.MinProfit,
			Timestamp:  time.Now().Unix(),
		})
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("publish bundle event failed")
		}
	}
}

func (e *Engine) failCycle(status *model.CycleStatus, stage string, err error) {
	e.failStreak++
	status.Outcome = model.OutcomeFailed
	status.Reason = stage

	metrics.CycleSkipsTotal.WithLabelValues(stage).Inc()
	if redis.Enabled() {
		_ = redis.IncrCounter(redis.KeyFailures)
	}

	logger.Logrus.WithFields(logrus.Fields{"Stage": stage, "ErrMsg": err}).Error("cycle aborted")
}
