package stats

import (
	"fmt"
	"math"
)

// Elo estimates the rating difference implied by a W/D/L record, with a 95%
// confidence margin and likelihood of superiority.
// See https://www.chessprogramming.org/Match_Statistics.
type Elo struct {
	diff  float64
	err   float64
	los   float64
	games int
}

func NewElo(wins, draws, losses int) Elo {
	return Elo{
		diff:  eloDiff(wins, draws, losses),
		err:   eloError(wins, draws, losses),
		los:   lossOfSuperiority(wins, losses),
		games: wins + draws + losses,
	}
}

func (e Elo) Diff() float64  { return e.diff }
func (e Elo) Error() float64 { return e.err }
func (e Elo) LOS() float64   { return e.los }

func (e Elo) String() string {
	return fmt.Sprintf("%.2f +/- %.2f", e.diff, e.err)
}

func percentToEloDiff(p float64) float64 {
	return -400 * math.Log10(1/p-1)
}

func eloDiff(wins, draws, losses int) float64 {
	n := float64(wins + draws + losses)
	if n == 0 {
		return 0
	}
	score := (float64(wins) + float64(draws)/2) / n
	if score <= 0 || score >= 1 {
		return math.Copysign(math.Inf(1), score-0.5)
	}
	return percentToEloDiff(score)
}

func eloError(wins, draws, losses int) float64 {
	n := float64(wins + draws + losses)
	if n == 0 {
		return 0
	}
	w := float64(wins) / n
	l := float64(losses) / n
	d := float64(draws) / n
	score := w + d/2

	devW := w * math.Pow(1-score, 2)
	devL := l * math.Pow(0-score, 2)
	devD := d * math.Pow(0.5-score, 2)
	stdev := math.Sqrt(devW+devL+devD) / math.Sqrt(n)

	devMin := score + phiInv(0.025)*stdev
	devMax := score + phiInv(0.975)*stdev
	if devMin <= 0 || devMax >= 1 {
		return math.Inf(1)
	}
	return (percentToEloDiff(devMax) - percentToEloDiff(devMin)) / 2
}

func lossOfSuperiority(wins, losses int) float64 {
	if wins+losses == 0 {
		return 0.5
	}
	return 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * inverseError(2*p-1)
}

// inverseError is the Winitzki approximation, accurate to ~2e-3 which is
// plenty for a reporting margin.
func inverseError(x float64) float64 {
	const a = 8 * (math.Pi - 3) / (3 * math.Pi * (4 - math.Pi))
	y := math.Log(1 - x*x)
	z := 2/(math.Pi*a) + y/2
	ret := math.Sqrt(math.Sqrt(z*z-y/a) - z)
	if x < 0 {
		return -ret
	}
	return ret
}
