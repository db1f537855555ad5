package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ledgerkit/bankimport/pkg/config"
	"github.com/ledgerkit/bankimport/pkg/importer"
	"github.com/ledgerkit/bankimport/pkg/ledger"
	"github.com/ledgerkit/bankimport/pkg/models"
	"github.com/ledgerkit/bankimport/pkg/parser"
	"github.com/ledgerkit/bankimport/pkg/server"
)

func main() {
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "bankimport",
	})

	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file (default is config.yaml)")
	flags.String("listen_addr", "0.0.0.0:3000", "Listen address")
	flags.String("ledger_url", "", "Base URL of the upstream ledger service")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		logger.Fatal("config error", "err", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("invalid timezone", "timezone", cfg.Timezone, "err", err)
	}

	registry := parser.New(logger, loc)
	client := ledger.New(cfg.LedgerURL, cfg.LedgerToken, cfg.RequestTimeout, logger)
	imp := importer.New(registry, client, client, logger, models.ImportPolicy(cfg.DefaultPolicy))

	srv := server.New(cfg, logger, imp)
	logger.Info("starting server", "addr", cfg.ListenAddr, "ledger", cfg.LedgerURL, "timezone", cfg.Timezone)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
