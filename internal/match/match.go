// Package match plays exactly one game between two engine drivers and seals
// the outcome. Each game is a failure-isolation boundary: engine trouble ends
// the game, never the tournament.
package match

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	chesslib "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gauntlet/internal/book"
	"gauntlet/internal/engine"
	"gauntlet/internal/obslog"
)

const startposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// DrawRule adjudicates a draw once both engines report a near-zero score for
// MoveCount consecutive plies, from full move MoveNumber on.
type DrawRule struct {
	Enabled    bool
	MoveNumber int
	MoveCount  int
	Score      int
}

// ResignRule adjudicates a loss once an engine's own score stays at or below
// -Score for MoveCount consecutive moves of that engine.
type ResignRule struct {
	Enabled   bool
	MoveCount int
	Score     int
}

type Options struct {
	Draw   DrawRule
	Resign ResignRule
}

// Match runs one game seeded with an opening. The stop flag is polled at the
// move-request boundary; a transition mid-game seals the record with
// TerminationInterrupt.
type Match struct {
	opts    Options
	opening book.Opening
	stop    *atomic.Bool
}

func New(opts Options, opening book.Opening, stop *atomic.Bool) *Match {
	return &Match{opts: opts, opening: opening, stop: stop}
}

// Run plays white against black and returns the sealed record. The returned
// error is non-nil only when the opening cannot be set up or an engine failed
// to start; the record is still sealed (on a start failure the failed side
// loses, or the game is drawn if both failed) so the caller can either retry
// or count it.
func (m *Match) Run(white, black engine.Config) (Data, error) {
	data := Data{
		ID:        uuid.NewString(),
		White:     Player{Config: white, Color: engine.White},
		Black:     Player{Config: black, Color: engine.Black},
		StartedAt: time.Now(),
	}

	game, err := m.setupBoard()
	if err != nil {
		return seal(data, ResultNone, TerminationEngineError, err.Error()), err
	}
	data.FEN = game.FEN()

	var (
		drivers [2]*engine.Driver
		errs    [2]error
	)
	var g errgroup.Group
	for i, cfg := range [2]engine.Config{white, black} {
		g.Go(func() error {
			drivers[i], errs[i] = engine.Start(cfg)
			return errs[i]
		})
	}
	startErr := g.Wait()
	defer func() {
		for _, d := range drivers {
			if d != nil {
				d.Close()
			}
		}
	}()
	if startErr != nil {
		return m.sealStartFailure(data, errs), startErr
	}

	for i, d := range drivers {
		if err := d.NewGame(); err != nil {
			loser := engine.Color(i)
			return seal(data, winnerOf(loser.Other()), TerminationEngineError,
				fmt.Sprintf("%s disconnects", d.Name())), nil
		}
	}

	return m.play(data, game, drivers), nil
}

func (m *Match) setupBoard() (*chesslib.Game, error) {
	var game *chesslib.Game
	if m.opening.FEN != "" {
		opt, err := chesslib.FEN(m.opening.FEN)
		if err != nil {
			return nil, fmt.Errorf("opening position %q: %w", m.opening.FEN, err)
		}
		game = chesslib.NewGame(opt)
	} else {
		game = chesslib.NewGame()
	}
	for _, mv := range m.opening.Moves {
		if err := game.PushNotationMove(mv, chesslib.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("opening move %q: %w", mv, err)
		}
	}
	return game, nil
}

func (m *Match) play(data Data, game *chesslib.Game, drivers [2]*engine.Driver) Data {
	configs := [2]engine.Config{data.White.Config, data.Black.Config}
	baseFEN := data.FEN

	remaining := [2]time.Duration{configs[0].Limit.TC.Time, configs[1].Limit.TC.Time}
	movesToControl := [2]int{configs[0].Limit.TC.Moves, configs[1].Limit.TC.Moves}

	var played []string
	var resignPlies [2]int
	drawPlies := 0

	for {
		if m.stop != nil && m.stop.Load() {
			return seal(data, ResultNone, TerminationInterrupt, "tournament interrupted")
		}

		if outcome, method, over := ruleResult(game); over {
			return seal(data, resultFromOutcome(outcome), TerminationNormal,
				strings.ToLower(method.String()))
		}

		side := colorOf(game.Position().Turn())
		driver := drivers[side]
		name := configs[side].Name

		clk := engine.Clock{
			White:     remaining[engine.White],
			Black:     remaining[engine.Black],
			WhiteInc:  configs[engine.White].Limit.TC.Increment,
			BlackInc:  configs[engine.Black].Limit.TC.Increment,
			MovesToGo: movesToControl[side],
		}

		started := time.Now()
		result, err := driver.Go(positionCommand(baseFEN, played), clk, side)
		elapsed := time.Since(started)

		if err != nil {
			if errors.Is(err, engine.ErrReadTimeout) {
				return seal(data, winnerOf(side.Other()), TerminationTimeout,
					fmt.Sprintf("%s loses on time", name))
			}
			obslog.L().Warn("engine io failure",
				zap.String("engine", name), zap.String("game_id", data.ID), zap.Error(err))
			return seal(data, winnerOf(side.Other()), TerminationEngineError,
				fmt.Sprintf("%s disconnects", name))
		}

		tc := configs[side].Limit.TC
		if tc.Time > 0 {
			remaining[side] -= elapsed
			if remaining[side] < 0 {
				return seal(data, winnerOf(side.Other()), TerminationTimeout,
					fmt.Sprintf("%s loses on time", name))
			}
			remaining[side] += tc.Increment
			if tc.Moves > 0 {
				movesToControl[side]--
				if movesToControl[side] == 0 {
					remaining[side] += tc.Time
					movesToControl[side] = tc.Moves
				}
			}
		}

		if err := game.PushNotationMove(result.Move, chesslib.UCINotation{}, nil); err != nil {
			data.Moves = append(data.Moves, MoveData{Move: result.Move, Score: result.Score, Depth: result.Depth, Elapsed: elapsed})
			return seal(data, winnerOf(side.Other()), TerminationIllegalMove,
				fmt.Sprintf("%s makes an illegal move: %s", name, result.Move))
		}
		played = append(played, result.Move)
		data.Moves = append(data.Moves, MoveData{Move: result.Move, Score: result.Score, Depth: result.Depth, Elapsed: elapsed})

		if m.opts.Resign.Enabled {
			if result.Score <= -m.opts.Resign.Score {
				resignPlies[side]++
			} else {
				resignPlies[side] = 0
			}
			if resignPlies[side] >= m.opts.Resign.MoveCount {
				return seal(data, winnerOf(side.Other()), TerminationAdjudication,
					fmt.Sprintf("%s resigns by adjudication", name))
			}
		}
		if m.opts.Draw.Enabled {
			if abs(result.Score) <= m.opts.Draw.Score {
				drawPlies++
			} else {
				drawPlies = 0
			}
			fullMoves := (len(played) + 1) / 2
			if fullMoves >= m.opts.Draw.MoveNumber && drawPlies >= m.opts.Draw.MoveCount {
				return seal(data, ResultDraw, TerminationAdjudication, "draw by adjudication")
			}
		}
	}
}

func (m *Match) sealStartFailure(data Data, errs [2]error) Data {
	switch {
	case errs[0] != nil && errs[1] != nil:
		return seal(data, ResultDraw, TerminationEngineError, "both engines failed to start")
	case errs[0] != nil:
		return seal(data, winnerOf(engine.Black), TerminationEngineError,
			fmt.Sprintf("%s failed to start", data.White.Config.Name))
	default:
		return seal(data, winnerOf(engine.White), TerminationEngineError,
			fmt.Sprintf("%s failed to start", data.Black.Config.Name))
	}
}

// ruleResult reports whether the position is terminal under the rules,
// claiming threefold or fifty-move draws when eligible.
func ruleResult(game *chesslib.Game) (chesslib.Outcome, chesslib.Method, bool) {
	if game.Outcome() != chesslib.NoOutcome {
		return game.Outcome(), game.Method(), true
	}
	for _, method := range game.EligibleDraws() {
		if method == chesslib.ThreefoldRepetition || method == chesslib.FiftyMoveRule {
			if err := game.Draw(method); err == nil {
				return game.Outcome(), method, true
			}
		}
	}
	return chesslib.NoOutcome, chesslib.NoMethod, false
}

// seal fixes both players' results and the termination on the record.
// whiteResult is the result from white's side; ResultNone marks games without
// a winner declaration (interrupt, unusable opening).
func seal(data Data, whiteResult GameResult, term Termination, reason string) Data {
	data.White.Result = whiteResult
	data.Black.Result = inverse(whiteResult)
	data.Termination = term
	data.Reason = reason
	data.EndedAt = time.Now()
	return data
}

func inverse(r GameResult) GameResult {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	case ResultDraw:
		return ResultDraw
	default:
		return ResultNone
	}
}

// winnerOf returns the white-side result when the given color won.
func winnerOf(winner engine.Color) GameResult {
	if winner == engine.White {
		return ResultWin
	}
	return ResultLoss
}

func resultFromOutcome(o chesslib.Outcome) GameResult {
	switch o {
	case chesslib.WhiteWon:
		return ResultWin
	case chesslib.BlackWon:
		return ResultLoss
	default:
		return ResultDraw
	}
}

func colorOf(c chesslib.Color) engine.Color {
	if c == chesslib.White {
		return engine.White
	}
	return engine.Black
}

func positionCommand(baseFEN string, moves []string) string {
	var sb strings.Builder
	if baseFEN == "" || baseFEN == startposFEN {
		sb.WriteString("position startpos")
	} else {
		sb.WriteString("position fen ")
		sb.WriteString(baseFEN)
	}
	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
