package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/thescopedao/solana_arb_bot/config"
	"github.com/thescopedao/solana_arb_bot/core/alikafka"
	"github.com/thescopedao/solana_arb_bot/core/arbcheck"
	"github.com/thescopedao/solana_arb_bot/core/assembler"
	"github.com/thescopedao/solana_arb_bot/core/chain"
	"github.com/thescopedao/solana_arb_bot/core/engine"
	"github.com/thescopedao/solana_arb_bot/core/jito"
	"github.com/thescopedao/solana_arb_bot/core/jupiter"
	"github.com/thescopedao/solana_arb_bot/core/redis"
	"github.com/thescopedao/solana_arb_bot/core/track"
	"github.com/thescopedao/solana_arb_bot/core/wallet"
	"github.com/thescopedao/solana_arb_bot/core/web"
	"github.com/thescopedao/solana_arb_bot/core/web/handler"
	"github.com/thescopedao/solana_arb_bot/utils/logger"
)

func main() {
	configPath := flag.String("config_path", "./", "config file")
	logicLogFile := flag.String("logic_log_file", "./log/arb_bot.log", "logic log file")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	//init logic logger
	logger.Init(*logicLogFile)
	logger.SetLogLevel(*logLevel)

	err := config.LoadConf(*configPath)
	if err != nil {
		log.Fatal("load config failed:", err)
	}

	signer, err := wallet.FromBase58(config.GetWalletConfig().SecretKey)
	if err != nil {
		log.Fatal("load signing key failed:", err)
	}
	logger.Logrus.WithFields(logrus.Fields{"Payer": signer.PublicKey().String()}).Info("wallet loaded")

	programID, err := solana.PublicKeyFromBase58(config.GetArbConfig().ProgramID)
	if err != nil {
		log.Fatal("bad guard program id:", err)
	}
	fallbackTip, err := solana.PublicKeyFromBase58(config.GetJitoConfig().TipAccount)
	if err != nil {
		log.Fatal("bad tip account:", err)
	}

	if redis.Enabled() {
		redis.InitRedis()
	}
	if alikafka.Enabled() {
		alikafka.InitKafka()
	}

	jupClient := jupiter.NewClient(config.GetJupiterConfig().QuoteURL, config.GetJupiterConfig().SwapInstructionURL)
	jitoClient := jito.NewClient(config.GetJitoConfig().BundleURL)
	ledger := chain.NewClient(config.GetRpcConfig().Endpoint)

	track.TipAccountTask(jitoClient)

	asm := assembler.New(
		jupClient,
		ledger,
		signer,
		arbcheck.Program{ID: programID},
		func() solana.PublicKey { return track.TipAccount(fallbackTip) },
	)

	eng := engine.New(jupClient, asm, jitoClient, signer.PublicKey())
	handler.SetStatusSource(eng.Status)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go web.Run(ctx)

	eng.Run(ctx)
}
