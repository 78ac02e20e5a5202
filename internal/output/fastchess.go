package output

import (
	"fmt"

	"gauntlet/internal/stats"
)

type fastchess struct{}

func (f *fastchess) Type() Type { return TypeFastchess }

func (f *fastchess) StartGame(first, second string, current, total int) {
	fmt.Printf("Started game %d of %d (%s vs %s)\n", current, total, first, second)
}

func (f *fastchess) EndGame(result, first, second, reason string, id int) {
	fmt.Printf("Finished game %d (%s vs %s): %s {%s}\n", id, first, second, result, reason)
}

func (f *fastchess) Interval(sprt stats.Sprt, st stats.Stats, first, second string, completed int) {
	fmt.Println("--------------------------------------------------")
	f.PrintElo(st, first, second, completed)
	f.PrintSprt(sprt, st)
	fmt.Println("--------------------------------------------------")
}

func (f *fastchess) PrintElo(st stats.Stats, first, second string, completed int) {
	elo := stats.NewElo(st.Wins, st.Draws, st.Losses)
	games := st.Sum()
	score := 0.0
	if games > 0 {
		score = (float64(st.Wins) + float64(st.Draws)/2) / float64(games)
	}
	fmt.Printf("Score of %s vs %s: %d - %d - %d  [%.3f] %d\n",
		first, second, st.Wins, st.Losses, st.Draws, score, completed)
	if penta := st.PentaWW + st.PentaWD + st.PentaWL + st.PentaDD + st.PentaLD + st.PentaLL; penta > 0 {
		fmt.Printf("Ptnml:   WW: %d, WD: %d, DD/WL: %d, LD: %d, LL: %d\n",
			st.PentaWW, st.PentaWD, st.PentaWL+st.PentaDD, st.PentaLD, st.PentaLL)
	}
	fmt.Printf("Elo difference: %s, LOS: %.1f %%\n", elo, elo.LOS()*100)
}

func (f *fastchess) PrintSprt(sprt stats.Sprt, st stats.Stats) {
	if !sprt.Valid() {
		return
	}
	llr := sprt.LLR(st.Wins, st.Draws, st.Losses)
	fmt.Printf("SPRT: llr %.2f, lbound %.2f, ubound %.2f\n",
		llr, sprt.LowerBound(), sprt.UpperBound())
}

func (f *fastchess) EndTournament() {
	fmt.Println("Tournament finished")
}
