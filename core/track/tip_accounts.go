// Package track keeps slow-moving relay state fresh in the background. The
// relay rotates its tip collection accounts, so paying a stale one forfeits
// ordering priority.
package track

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/thescopedao/solana_arb_bot/core/jito"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

var (
	tipMutex    sync.RWMutex
	tipAccounts []solana.PublicKey
)

// TipAccount returns one of the relay's advertised tip accounts, or the
// fallback when no refresh has succeeded yet.
func TipAccount(fallback solana.PublicKey) solana.PublicKey {
	tipMutex.RLock()
	defer tipMutex.RUnlock()

	if len(tipAccounts) == 0 {
		return fallback
	}
	return tipAccounts[rand.Intn(len(tipAccounts))]
}

func refreshTipAccounts(client *jito.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	list, err := client.GetTipAccounts(ctx)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("TipAccountTask fetch tip accounts failed")
		return
	}

	parsed := make([]solana.PublicKey, 0, len(list))
	for _, addr := range list {
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"Address": addr, "ErrMsg": err}).Error("TipAccountTask bad tip account address")
			continue
		}
		parsed = append(parsed, pk)
	}
	if len(parsed) == 0 {
		return
	}

	tipMutex.Lock()
	tipAccounts = parsed
	tipMutex.Unlock()

	logger.Logrus.WithFields(logrus.Fields{"Count": len(parsed)}).Info("TipAccountTask refresh tip accounts success")
}

// TipAccountTask refreshes the tip account set once at startup and then on
// a fixed timer.
func TipAccountTask(client *jito.Client) {
	ticker := time.NewTicker(5 * time.Minute)

	go func() {
		refreshTipAccounts(client)
		for range ticker.C {
			refreshTipAccounts(client)
		}
	}()
}
