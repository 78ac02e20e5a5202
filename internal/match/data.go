package match

import (
	"time"

	"gauntlet/internal/engine"
)

// Termination classifies how a game ended.
type Termination int8

const (
	TerminationNone Termination = iota
	TerminationNormal
	TerminationAdjudication
	TerminationTimeout
	TerminationIllegalMove
	TerminationInterrupt
	TerminationEngineError
)

func (t Termination) String() string {
	switch t {
	case TerminationNormal:
		return "normal"
	case TerminationAdjudication:
		return "adjudication"
	case TerminationTimeout:
		return "time forfeit"
	case TerminationIllegalMove:
		return "illegal move"
	case TerminationInterrupt:
		return "unterminated"
	case TerminationEngineError:
		return "abandoned"
	default:
		return ""
	}
}

// GameResult is one player's outcome.
type GameResult int8

const (
	ResultNone GameResult = iota
	ResultWin
	ResultDraw
	ResultLoss
)

// Player pairs an engine configuration with its assigned color and outcome.
type Player struct {
	Config engine.Config
	Color  engine.Color
	Result GameResult
}

// MoveData records one played move with the search info that produced it.
type MoveData struct {
	Move    string
	Score   int
	Depth   int
	Elapsed time.Duration
}

// Data is the sealed outcome record of one game. Immutable once Run returns.
type Data struct {
	ID          string
	White       Player
	Black       Player
	Moves       []MoveData
	FEN         string
	Reason      string
	Termination Termination
	StartedAt   time.Time
	EndedAt     time.Time
}

// ResultString renders the outcome from the white side, PGN style.
func (d Data) ResultString() string {
	switch d.White.Result {
	case ResultWin:
		return "1-0"
	case ResultLoss:
		return "0-1"
	case ResultDraw:
		return "1/2-1/2"
	default:
		return "*"
	}
}
