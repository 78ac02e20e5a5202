package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"gauntlet/internal/book"
	"gauntlet/internal/config"
	"gauntlet/internal/obslog"
	"gauntlet/internal/tournament"
	"gauntlet/internal/webstat"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gauntlet: %v\n", err)
		switch {
		case errors.Is(err, config.ErrConfig):
			os.Exit(2)
		case errors.Is(err, book.ErrOpeningLoad):
			os.Exit(3)
		default:
			os.Exit(1)
		}
	}
}

func run() error {
	var (
		configPath   = flag.String("config", "", "tournament YAML file")
		concurrency  = flag.Int("concurrency", 0, "number of games played in parallel")
		rounds       = flag.Int("rounds", 0, "rounds per engine pair")
		games        = flag.Int("games", 0, "games per round (2 enables pentanomial pairing)")
		seed         = flag.Int64("seed", 0, "tournament seed for shuffling and color swaps")
		recoverFlag  = flag.Bool("recover", false, "retry games whose engines failed to start")
		reportPenta  = flag.Bool("report-penta", false, "report pentanomial statistics (requires -games 2)")
		openingFile  = flag.String("openings", "", "opening book file")
		openingFmt   = flag.String("opening-format", "", "opening book format: epd or pgn")
		openingOrder = flag.String("opening-order", "", "opening order: sequential or random")
		openingStart = flag.Int("opening-start", -1, "offset of the first opening")
		sprtElo0     = flag.Float64("sprt-elo0", 0, "SPRT null hypothesis elo")
		sprtElo1     = flag.Float64("sprt-elo1", 0, "SPRT alternative hypothesis elo")
		sprtAlpha    = flag.Float64("sprt-alpha", 0.05, "SPRT type I error rate")
		sprtBeta     = flag.Float64("sprt-beta", 0.05, "SPRT type II error rate")
		sprtOn       = flag.Bool("sprt", false, "enable the SPRT early stop")
		pgnOut       = flag.String("pgnout", "", "archive file for finished games")
		outputMode   = flag.String("output", "", "progress format: fastchess or cutechess")
		live         = flag.String("live", "", "serve live results on this address, e.g. :8080")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		return err
	}
	defer obslog.L().Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, *concurrency, *rounds, *games, *seed, *recoverFlag, *reportPenta,
		*openingFile, *openingFmt, *openingOrder, *openingStart,
		*sprtOn, *sprtAlpha, *sprtBeta, *sprtElo0, *sprtElo1,
		*pgnOut, *outputMode, *live)

	if err := cfg.Validate(); err != nil {
		return err
	}

	rr, err := tournament.NewRoundRobin(cfg)
	if err != nil {
		return err
	}

	if cfg.Live != "" {
		server, err := webstat.Start(cfg.Live, rr)
		if err != nil {
			return err
		}
		defer server.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		obslog.L().Warn("signal received, stopping tournament", zap.String("signal", sig.String()))
		rr.Stop()
	}()

	return rr.Start(cfg.Engines)
}

// applyFlags overlays explicitly set flags on the file configuration.
func applyFlags(cfg *config.Tournament,
	concurrency, rounds, games int, seed int64, recoverFlag, reportPenta bool,
	openingFile, openingFmt, openingOrder string, openingStart int,
	sprtOn bool, sprtAlpha, sprtBeta, sprtElo0, sprtElo1 float64,
	pgnOut, outputMode, live string,
) {
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if rounds > 0 {
		cfg.Rounds = rounds
	}
	if games > 0 {
		cfg.Games = games
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if recoverFlag {
		cfg.Recover = true
	}
	if reportPenta {
		cfg.ReportPenta = true
	}
	if openingFile != "" {
		cfg.Opening.File = openingFile
	}
	if openingFmt != "" {
		cfg.Opening.Format = openingFmt
	}
	if openingOrder != "" {
		cfg.Opening.Order = openingOrder
	}
	if openingStart >= 0 {
		cfg.Opening.Start = openingStart
	}
	if sprtOn {
		cfg.Sprt.Enabled = true
		cfg.Sprt.Alpha = sprtAlpha
		cfg.Sprt.Beta = sprtBeta
		cfg.Sprt.Elo0 = sprtElo0
		cfg.Sprt.Elo1 = sprtElo1
	}
	if pgnOut != "" {
		cfg.Pgn.File = pgnOut
	}
	if outputMode != "" {
		cfg.Output = outputMode
	}
	if live != "" {
		cfg.Live = live
	}
}
