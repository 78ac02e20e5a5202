package engine

import (
	"fmt"
	"strconv"
	"time"
)

// Clock is a point-in-time snapshot of both players' remaining time, taken by
// the game runner right before a move request.
type Clock struct {
	White     time.Duration
	Black     time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
}

// BuildGoTokens assembles the "go" command for one search from the engine's
// configured limit and the current clock snapshot.
func BuildGoTokens(l Limit, clk Clock) ([]string, error) {
	args := []string{"go"}

	switch {
	case l.TC.FixedTime > 0:
		args = append(args, "movetime", strconv.FormatInt(l.TC.FixedTime.Milliseconds(), 10))
	case l.TC.Time > 0:
		args = append(args, "wtime", strconv.FormatInt(clk.White.Milliseconds(), 10))
		args = append(args, "btime", strconv.FormatInt(clk.Black.Milliseconds(), 10))
		if clk.WhiteInc > 0 {
			args = append(args, "winc", strconv.FormatInt(clk.WhiteInc.Milliseconds(), 10))
		}
		if clk.BlackInc > 0 {
			args = append(args, "binc", strconv.FormatInt(clk.BlackInc.Milliseconds(), 10))
		}
		if clk.MovesToGo > 0 {
			args = append(args, "movestogo", strconv.Itoa(clk.MovesToGo))
		}
	}
	if l.Plies > 0 {
		args = append(args, "depth", strconv.Itoa(l.Plies))
	}
	if l.Nodes > 0 {
		args = append(args, "nodes", strconv.FormatInt(l.Nodes, 10))
	}

	if len(args) == 1 {
		return nil, fmt.Errorf("limit defines no search bound")
	}
	return args, nil
}

// searchDeadline returns how long a driver waits for bestmove before the
// engine is considered to have lost on time. Zero means wait indefinitely
// (node- or depth-bounded searches carry no wall-clock guarantee).
func searchDeadline(l Limit, clk Clock, mover Color) time.Duration {
	const margin = 250 * time.Millisecond

	if l.TC.FixedTime > 0 {
		return l.TC.FixedTime + margin
	}
	if l.TC.Time > 0 {
		remaining := clk.White
		if mover == Black {
			remaining = clk.Black
		}
		if remaining < 0 {
			remaining = 0
		}
		return remaining + margin
	}
	return 0
}
