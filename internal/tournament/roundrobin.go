// Package tournament schedules round-robin pairings over a worker pool,
// aggregates results and races the SPRT early-stop test against completion.
package tournament

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gauntlet/internal/archive"
	"gauntlet/internal/book"
	"gauntlet/internal/config"
	"gauntlet/internal/engine"
	"gauntlet/internal/match"
	"gauntlet/internal/obslog"
	"gauntlet/internal/output"
	"gauntlet/internal/stats"
)

// RoundRobin runs every unordered engine pair against each other for the
// configured number of rounds. One scheduled unit plays the round's games
// for a pair sharing a single opening, which the pentanomial model requires.
type RoundRobin struct {
	cfg    *config.Tournament
	out    output.Output
	book   *book.Book
	writer *archive.Writer
	pool   *Pool
	ledger *stats.Ledger
	sprt   stats.Sprt

	rngMu sync.Mutex
	rng   *rand.Rand

	stop      atomic.Bool
	completed atomic.Int64
	total     int64

	done      chan struct{}
	doneOnce  sync.Once
	finalOnce sync.Once
}

func NewRoundRobin(cfg *config.Tournament) (*RoundRobin, error) {
	outType, err := output.ParseType(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}

	var openings *book.Book
	if cfg.Opening.File != "" {
		openings, err = book.Load(cfg.Opening.File,
			book.Format(cfg.Opening.Format), book.Order(cfg.Opening.Order),
			cfg.Opening.Start, cfg.Seed)
		if err != nil {
			return nil, err
		}
	}

	writer, err := archive.NewWriter(cfg.PGNFile())
	if err != nil {
		return nil, err
	}

	return &RoundRobin{
		cfg:    cfg,
		out:    output.New(outType),
		book:   openings,
		writer: writer,
		pool:   NewPool(cfg.Concurrency),
		ledger: stats.NewLedger(),
		sprt:   stats.NewSprt(cfg.Sprt.Alpha, cfg.Sprt.Beta, cfg.Sprt.Elo0, cfg.Sprt.Elo1, cfg.Sprt.Enabled),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		done:   make(chan struct{}),
	}, nil
}

// Start enqueues all pairing units and blocks until the tournament completes
// or the stop flag fires, then drains the pool and flushes the archive.
func (r *RoundRobin) Start(engines []engine.Config) error {
	n := len(engines)
	r.total = int64(n*(n-1)/2) * int64(r.cfg.Rounds) * int64(r.cfg.Games)

	obslog.L().Info("tournament start",
		zap.Int("engines", n),
		zap.Int("rounds", r.cfg.Rounds),
		zap.Int("games_per_round", r.cfg.Games),
		zap.Int64("total_games", r.total),
		zap.Int("concurrency", r.cfg.Concurrency),
	)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := 0; k < r.cfg.Rounds; k++ {
				first, second, round := engines[i], engines[j], k
				r.pool.Enqueue(func() { r.playPairings(first, second, round) })
			}
		}
	}

	<-r.done
	r.pool.Join()
	r.pool.Close()

	r.printFinal(engines)

	if err := r.writer.Close(); err != nil {
		obslog.L().Error("archive close", zap.Error(err))
	}
	obslog.L().Info("tournament finished", zap.Int64("completed", r.completed.Load()))
	return nil
}

// Stop publishes the global stop flag. Safe from any goroutine; in-flight
// games seal as interrupted.
func (r *RoundRobin) Stop() {
	r.stop.Store(true)
	r.closeDone()
}

// Progress returns the completed and total game counts.
func (r *RoundRobin) Progress() (completed, total int64) {
	return r.completed.Load(), r.total
}

// Pairs returns a point-in-time ledger snapshot for reporting surfaces.
func (r *RoundRobin) Pairs() []stats.PairSnapshot {
	return r.ledger.Snapshots()
}

func (r *RoundRobin) closeDone() {
	r.doneOnce.Do(func() { close(r.done) })
}

// playPairings runs games_per_round consecutive games between first and
// second, colors alternating, sharing one opening. The accumulator stays in
// first's perspective; games where first played black are inverted before
// folding.
func (r *RoundRobin) playPairings(first, second engine.Config, round int) {
	if r.stop.Load() {
		return
	}

	configs := [2]engine.Config{first, second}
	if r.out.Type() == output.TypeCutechess && r.randBool() {
		configs[0], configs[1] = configs[1], configs[0]
	}

	opening := r.nextOpening()

	var acc stats.Stats
	for i := 0; i < r.cfg.Games; i++ {
		if r.stop.Load() {
			return
		}
		gameID := round*r.cfg.Games + i + 1

		r.out.StartGame(configs[0].Name, configs[1].Name, gameID, r.cfg.Rounds*r.cfg.Games)
		data, startErr := match.New(r.matchOptions(), opening, &r.stop).Run(configs[0], configs[1])

		if data.Termination == match.TerminationInterrupt {
			return
		}

		if startErr != nil {
			obslog.L().Warn("game start failed",
				zap.String("white", configs[0].Name),
				zap.String("black", configs[1].Name),
				zap.String("reason", data.Reason),
			)
			if r.cfg.Recover && errors.Is(startErr, engine.ErrStart) {
				i--
				continue
			}
		}

		r.archiveGame(data, gameID)
		r.out.EndGame(data.ResultString(), configs[0].Name, configs[1].Name, data.Reason, gameID)

		gs := gameStats(data)
		if configs[0].Name != first.Name {
			acc = acc.Add(gs.Invert())
		} else {
			acc = acc.Add(gs)
		}

		completed := r.completed.Add(1)
		if !r.cfg.ReportPenta {
			r.publish(configs[0].Name, configs[1].Name, gs, first.Name, second.Name, completed)
		}
		if completed >= r.total {
			r.closeDone()
		}

		configs[0], configs[1] = configs[1], configs[0]
	}

	if r.cfg.ReportPenta {
		acc = bucketPair(acc)
		r.publish(first.Name, second.Name, acc, first.Name, second.Name, r.completed.Load())
	}
}

// publish folds stats into the ledger, emits the progress report and races
// the SPRT test.
func (r *RoundRobin) publish(updFirst, updSecond string, s stats.Stats, repFirst, repSecond string, completed int64) {
	r.ledger.Update(updFirst, updSecond, s)
	snapshot := r.ledger.Snapshot(repFirst, repSecond)
	r.out.Interval(r.sprt, snapshot, repFirst, repSecond, int(completed))

	if r.sprt.Valid() && len(r.cfg.Engines) == 2 {
		r.updateSprtStatus(repFirst, repSecond, snapshot)
	}
}

func (r *RoundRobin) updateSprtStatus(first, second string, snapshot stats.Stats) {
	llr := r.sprt.LLR(snapshot.Wins, snapshot.Draws, snapshot.Losses)
	decision := r.sprt.Result(llr)
	completed := r.completed.Load()

	if decision == stats.SprtContinue && completed < r.total {
		return
	}

	r.stop.Store(true)
	r.finalOnce.Do(func() {
		verdict := "inconclusive"
		switch decision {
		case stats.SprtAcceptH1:
			verdict = "H1 accepted"
		case stats.SprtAcceptH0:
			verdict = "H0 accepted"
		}
		obslog.L().Info("sprt finished",
			zap.String("verdict", verdict),
			zap.Float64("llr", llr),
			zap.String("bounds", r.sprt.Bounds()),
		)
		fmt.Printf("SPRT test finished: %s %s\n", verdict, r.sprt.Bounds())
		r.out.PrintElo(snapshot, first, second, int(completed))
		r.out.EndTournament()
	})
	r.closeDone()
}

// printFinal emits the closing tally for runs that ended without an SPRT
// verdict.
func (r *RoundRobin) printFinal(engines []engine.Config) {
	r.finalOnce.Do(func() {
		for i := 0; i < len(engines); i++ {
			for j := i + 1; j < len(engines); j++ {
				snapshot := r.ledger.Snapshot(engines[i].Name, engines[j].Name)
				if snapshot.Sum() == 0 {
					continue
				}
				r.out.PrintElo(snapshot, engines[i].Name, engines[j].Name, snapshot.Sum())
			}
		}
		r.out.EndTournament()
	})
}

func (r *RoundRobin) archiveGame(data match.Data, round int) {
	record := archive.BuildPGN(data, r.cfg.EventName, r.cfg.Site, round)
	if err := r.writer.Append(record); err != nil {
		obslog.L().Error("archive append failed", zap.String("game_id", data.ID), zap.Error(err))
	}
}

func (r *RoundRobin) matchOptions() match.Options {
	return match.Options{
		Draw: match.DrawRule{
			Enabled:    r.cfg.Draw.Enabled,
			MoveNumber: r.cfg.Draw.MoveNumber,
			MoveCount:  r.cfg.Draw.MoveCount,
			Score:      r.cfg.Draw.Score,
		},
		Resign: match.ResignRule{
			Enabled:   r.cfg.Resign.Enabled,
			MoveCount: r.cfg.Resign.MoveCount,
			Score:     r.cfg.Resign.Score,
		},
	}
}

func (r *RoundRobin) nextOpening() book.Opening {
	if r.book == nil {
		return book.Opening{}
	}
	return r.book.Next()
}

func (r *RoundRobin) randBool() bool {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Intn(2) == 1
}

// gameStats expresses one sealed game as Stats from the white side.
func gameStats(data match.Data) stats.Stats {
	switch data.White.Result {
	case match.ResultWin:
		return stats.Stats{Wins: 1}
	case match.ResultLoss:
		return stats.Stats{Losses: 1}
	default:
		return stats.Stats{Draws: 1}
	}
}

// bucketPair classifies a completed two-game pair into exactly one
// pentanomial bucket.
func bucketPair(s stats.Stats) stats.Stats {
	switch {
	case s.Wins == 2:
		s.PentaWW = 1
	case s.Wins == 1 && s.Draws == 1:
		s.PentaWD = 1
	case s.Wins == 1 && s.Losses == 1:
		s.PentaWL = 1
	case s.Draws == 2:
		s.PentaDD = 1
	case s.Losses == 1 && s.Draws == 1:
		s.PentaLD = 1
	case s.Losses == 2:
		s.PentaLL = 1
	}
	return s
}
