package stats

import "testing"

func TestStatsAdd(t *testing.T) {
	a := Stats{Wins: 3, Draws: 2, Losses: 1, PentaWW: 1, PentaWD: 1}
	b := Stats{Wins: 1, Draws: 1, Losses: 4, PentaLL: 2, PentaWD: 1}

	got := a.Add(b)
	want := Stats{Wins: 4, Draws: 3, Losses: 5, PentaWW: 1, PentaWD: 2, PentaLL: 2}
	if got != want {
		t.Fatalf("Add: got %+v want %+v", got, want)
	}
	if got.Sum() != 12 {
		t.Fatalf("Sum: got %d want 12", got.Sum())
	}

	var zero Stats
	if a.Add(zero) != a {
		t.Fatalf("zero is not the identity: %+v", a.Add(zero))
	}
}

func TestStatsInvert(t *testing.T) {
	s := Stats{Wins: 5, Draws: 2, Losses: 1, PentaWW: 2, PentaWD: 1, PentaWL: 1, PentaDD: 3, PentaLD: 2, PentaLL: 4}

	inv := s.Invert()
	if inv.Wins != s.Losses || inv.Losses != s.Wins {
		t.Fatalf("wins/losses not swapped: %+v", inv)
	}
	if inv.PentaWW != s.PentaLL || inv.PentaLL != s.PentaWW {
		t.Fatalf("WW/LL not swapped: %+v", inv)
	}
	if inv.PentaWD != s.PentaLD || inv.PentaLD != s.PentaWD {
		t.Fatalf("WD/LD not swapped: %+v", inv)
	}
	if inv.PentaWL != s.PentaWL || inv.PentaDD != s.PentaDD || inv.Draws != s.Draws {
		t.Fatalf("symmetric fields changed: %+v", inv)
	}

	if s.Invert().Invert() != s {
		t.Fatalf("inversion is not an involution")
	}

	sym := s.Add(s.Invert())
	if sym.Wins != sym.Losses || sym.PentaWW != sym.PentaLL || sym.PentaWD != sym.PentaLD {
		t.Fatalf("s + ~s not symmetric: %+v", sym)
	}
}
