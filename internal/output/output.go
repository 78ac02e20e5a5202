// Package output streams tournament progress to the terminal in one of two
// formats: the native one, or a cutechess-cli compatible one for tools that
// scrape that layout.
package output

import (
	"fmt"
	"strings"

	"gauntlet/internal/stats"
)

type Type string

const (
	TypeFastchess Type = "fastchess"
	TypeCutechess Type = "cutechess"
)

func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TypeFastchess):
		return TypeFastchess, nil
	case string(TypeCutechess):
		return TypeCutechess, nil
	default:
		return "", fmt.Errorf("unknown output type %q", s)
	}
}

// Output receives progress events at publish points. Implementations write to
// stdout; workers call them already holding a consistent stats snapshot.
type Output interface {
	Type() Type
	StartGame(first, second string, current, total int)
	EndGame(result, first, second, reason string, id int)
	Interval(sprt stats.Sprt, st stats.Stats, first, second string, completed int)
	PrintElo(st stats.Stats, first, second string, completed int)
	PrintSprt(sprt stats.Sprt, st stats.Stats)
	EndTournament()
}

// New returns the formatter for the requested type.
func New(t Type) Output {
	if t == TypeCutechess {
		return &cutechess{}
	}
	return &fastchess{}
}
