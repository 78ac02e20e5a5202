package stats

import (
	"math"
	"testing"
)

func TestEloDiff(t *testing.T) {
	e := NewElo(100, 0, 100)
	if math.Abs(e.Diff()) > 1e-9 {
		t.Fatalf("even score should be 0 elo, got %f", e.Diff())
	}

	e = NewElo(150, 100, 50)
	if e.Diff() <= 0 {
		t.Fatalf("winning record should be positive elo, got %f", e.Diff())
	}
	if e.Error() <= 0 {
		t.Fatalf("error margin should be positive, got %f", e.Error())
	}
	if e.LOS() <= 0.5 {
		t.Fatalf("winning record should have LOS > 0.5, got %f", e.LOS())
	}

	inv := NewElo(50, 100, 150)
	if math.Abs(e.Diff()+inv.Diff()) > 1e-9 {
		t.Fatalf("mirrored records should negate: %f vs %f", e.Diff(), inv.Diff())
	}
}

func TestEloKnownValue(t *testing.T) {
	// 75% score is roughly +190.8 elo.
	e := NewElo(3000, 0, 1000)
	if math.Abs(e.Diff()-190.8) > 0.5 {
		t.Fatalf("75%% score: got %f want ~190.8", e.Diff())
	}
}

func TestEloErrorShrinks(t *testing.T) {
	small := NewElo(15, 10, 5)
	large := NewElo(1500, 1000, 500)
	if large.Error() >= small.Error() {
		t.Fatalf("error margin should shrink with sample size: %f vs %f", large.Error(), small.Error())
	}
}
