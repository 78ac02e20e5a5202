package output

import (
	"fmt"

	"gauntlet/internal/stats"
)

// cutechess mimics cutechess-cli's progress layout so downstream tooling that
// parses that format keeps working.
type cutechess struct{}

func (c *cutechess) Type() Type { return TypeCutechess }

func (c *cutechess) StartGame(first, second string, current, total int) {
	fmt.Printf("Started game %d of %d (%s vs %s)\n", current, total, first, second)
}

func (c *cutechess) EndGame(result, first, second, reason string, id int) {
	fmt.Printf("Finished game %d (%s vs %s): %s {%s}\n", id, first, second, result, reason)
}

func (c *cutechess) Interval(sprt stats.Sprt, st stats.Stats, first, second string, completed int) {
	c.PrintElo(st, first, second, completed)
	c.PrintSprt(sprt, st)
}

func (c *cutechess) PrintElo(st stats.Stats, first, second string, completed int) {
	elo := stats.NewElo(st.Wins, st.Draws, st.Losses)
	fmt.Printf("Score of %s vs %s: %d - %d - %d  [%.3f] %d\n",
		first, second, st.Wins, st.Losses, st.Draws, scoreOf(st), completed)
	fmt.Printf("Elo difference: %s\n", elo)
}

func (c *cutechess) PrintSprt(sprt stats.Sprt, st stats.Stats) {
	if !sprt.Valid() {
		return
	}
	llr := sprt.LLR(st.Wins, st.Draws, st.Losses)
	fmt.Printf("SPRT: llr %.2f (%.1f%%), lbound %.2f, ubound %.2f\n",
		llr, llrPercent(llr, sprt)*100, sprt.LowerBound(), sprt.UpperBound())
}

func (c *cutechess) EndTournament() {
	fmt.Println("Finished match")
}

func scoreOf(st stats.Stats) float64 {
	games := st.Sum()
	if games == 0 {
		return 0
	}
	return (float64(st.Wins) + float64(st.Draws)/2) / float64(games)
}

// llrPercent expresses progress toward the nearest bound.
func llrPercent(llr float64, sprt stats.Sprt) float64 {
	if llr >= 0 {
		return llr / sprt.UpperBound()
	}
	return llr / sprt.LowerBound()
}
