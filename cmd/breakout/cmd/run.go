package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ichikk/sessionbreakout/broker"
	"github.com/ichikk/sessionbreakout/config"
	"github.com/ichikk/sessionbreakout/journal"
	"github.com/ichikk/sessionbreakout/market"
	"github.com/ichikk/sessionbreakout/pkg/logger"
	"github.com/ichikk/sessionbreakout/risk"
	"github.com/ichikk/sessionbreakout/sim"
	"github.com/ichikk/sessionbreakout/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a candle file through the strategy",
	Long: `Replay a CSV candle file (time,open,high,low,close) through the
session-breakout strategy against a simulated execution venue.

The candle file is interpreted as the configured London/US session
instrument at the configured trading period. Conversion rates for
position sizing come from replay.rates in the config.

Example:
  breakout run -f configs/eurusd.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Optional .env for overrides like SBS_LOG_LEVEL.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl := os.Getenv("SBS_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if cfg.Replay.BarsFile == "" {
		return fmt.Errorf("replay.bars_file is required for run")
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		OutputFile: cfg.Logging.OutputFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})

	period, err := market.ParsePeriod(cfg.Strategy.Period)
	if err != nil {
		return err
	}
	london, _ := market.Lookup(cfg.Strategy.LondonInstrument)
	asian, _ := market.Lookup(cfg.Strategy.AsianInstrument)

	var j journal.Journal
	switch cfg.Journal.Type {
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.OrdersFile)
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	if j != nil {
		defer j.Close()
	}

	engine := sim.NewEngine(broker.AccountSnapshot{
		Equity:     cfg.Account.Equity,
		CreditLine: cfg.Account.CreditLine,
		Currency:   cfg.Account.Currency,
	})

	strat := strategies.NewSessionBreakout(strategies.BreakoutConfig{
		LondonInstrument: london,
		LondonTakeProfit: cfg.Strategy.LondonTakeProfit,
		AsianInstrument:  asian,
		AsianTakeProfit:  cfg.Strategy.AsianTakeProfit,
		Period:           period,
		MarginPips:       cfg.Strategy.BreakoutPips,
		LabelPrefix:      cfg.Strategy.LabelPrefix,
		Slippage:         cfg.Strategy.Slippage,
	}, strategies.Deps{
		History: engine,
		Account: engine,
		Gateway: engine,
		Sizer: risk.Sizer{
			BaseCurrency: cfg.Sizing.BaseCurrency,
			MarginRatio:  cfg.Sizing.MarginRatio,
			MaxLots:      cfg.Sizing.MaxLots,
			History:      engine,
			Account:      engine,
			Log:          log,
		},
		Journal: j,
		Log:     log,
	})
	engine.SetEventHandler(strat)

	ctx := context.Background()

	// Static conversion rates for sizing during the replay.
	for pair, bid := range cfg.Replay.Rates {
		if err := engine.UpdateTick(ctx, market.Tick{Instrument: pair, Bid: bid, Ask: bid}); err != nil {
			return err
		}
	}

	candles, err := sim.LoadCandlesCSV(cfg.Replay.BarsFile)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}
	engine.LoadCandles(london.Name, period, broker.Bid, candles)

	fmt.Printf("Replaying %d %s candles of %s\n", len(candles), period, london.Name)
	fmt.Printf("Subscribed instruments: %s\n\n",
		strings.Join(strat.SubscribedInstruments(cfg.Account.Currency), ", "))

	spread := cfg.Replay.SpreadPips * london.PipValue
	for _, c := range candles {
		tick := market.Tick{
			Instrument: london.Name,
			Time:       c.Time.Add(period.Duration()),
			Bid:        c.Close,
			Ask:        c.Close + spread,
		}
		if err := engine.UpdateTick(ctx, tick); err != nil {
			return fmt.Errorf("update tick: %w", err)
		}
		if err := strat.OnBar(ctx, london.Name, period, c, c); err != nil {
			return fmt.Errorf("bar %s: %w", c.Time, err)
		}
	}

	strat.OnStop()

	perf := strat.Performance()
	fmt.Printf("\nFinal Results:\n")
	fmt.Printf("  Total Pips: %.1f\n", perf.TotalPips)
	fmt.Printf("  Total Profit/Loss: %.2f %s\n", perf.TotalProfitLoss, cfg.Account.Currency)

	return nil
}
