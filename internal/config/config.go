// Package config loads and validates the tournament configuration from a
// YAML file, with CLI flags layered on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"gauntlet/internal/book"
	"gauntlet/internal/engine"
	"gauntlet/internal/output"
)

// ErrConfig marks invalid configuration. Fatal at startup.
var ErrConfig = errors.New("invalid configuration")

type Opening struct {
	File   string `yaml:"file"`
	Format string `yaml:"format"`
	Order  string `yaml:"order"`
	Start  int    `yaml:"start"`
}

type Sprt struct {
	Enabled bool    `yaml:"enabled"`
	Alpha   float64 `yaml:"alpha"`
	Beta    float64 `yaml:"beta"`
	Elo0    float64 `yaml:"elo0"`
	Elo1    float64 `yaml:"elo1"`
}

type Draw struct {
	Enabled    bool `yaml:"enabled"`
	MoveNumber int  `yaml:"movenumber"`
	MoveCount  int  `yaml:"movecount"`
	Score      int  `yaml:"score"`
}

type Resign struct {
	Enabled   bool `yaml:"enabled"`
	MoveCount int  `yaml:"movecount"`
	Score     int  `yaml:"score"`
}

type Pgn struct {
	File string `yaml:"file"`
}

type Tournament struct {
	EventName string `yaml:"event"`
	Site      string `yaml:"site"`

	Engines []engine.Config `yaml:"engines"`

	Concurrency int    `yaml:"concurrency"`
	Rounds      int    `yaml:"rounds"`
	Games       int    `yaml:"games"`
	Seed        int64  `yaml:"seed"`
	Recover     bool   `yaml:"recover"`
	ReportPenta bool   `yaml:"report_penta"`
	Output      string `yaml:"output"`

	Opening Opening `yaml:"opening"`
	Sprt    Sprt    `yaml:"sprt"`
	Pgn     Pgn     `yaml:"pgn"`
	Draw    Draw    `yaml:"draw"`
	Resign  Resign  `yaml:"resign"`

	// Live enables the HTTP results endpoint when set to a listen address.
	Live string `yaml:"live"`
}

func Default() Tournament {
	return Tournament{
		EventName:   "gauntlet",
		Concurrency: 1,
		Rounds:      1,
		Games:       1,
		Output:      string(output.TypeFastchess),
		Opening: Opening{
			Format: string(book.FormatEPD),
			Order:  string(book.OrderSequential),
		},
	}
}

// Load reads the YAML file over the defaults. An empty path returns the
// defaults untouched so flag-only runs work; a path to a missing file is an
// ErrConfig error.
func Load(path string) (*Tournament, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfig, path, err)
	}
	return &cfg, nil
}

func (t *Tournament) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
	}

	if len(t.Engines) < 2 {
		return fail("need at least two engines, have %d", len(t.Engines))
	}
	seen := make(map[string]struct{}, len(t.Engines))
	for _, e := range t.Engines {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
		if _, dup := seen[e.Name]; dup {
			return fail("duplicate engine name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	if t.Concurrency <= 0 {
		return fail("concurrency must be positive, got %d", t.Concurrency)
	}
	if t.Rounds <= 0 {
		return fail("rounds must be positive, got %d", t.Rounds)
	}
	if t.Games != 1 && t.Games != 2 {
		return fail("games per round must be 1 or 2, got %d", t.Games)
	}
	if t.ReportPenta && t.Games != 2 {
		return fail("pentanomial reporting requires games=2")
	}

	if _, err := output.ParseType(t.Output); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if t.Opening.File != "" {
		switch book.Format(t.Opening.Format) {
		case book.FormatEPD, book.FormatPGN:
		default:
			return fail("unknown opening format %q", t.Opening.Format)
		}
		switch book.Order(t.Opening.Order) {
		case book.OrderSequential, book.OrderRandom:
		default:
			return fail("unknown opening order %q", t.Opening.Order)
		}
		if t.Opening.Start < 0 {
			return fail("opening start must not be negative")
		}
	}

	if t.Sprt.Enabled {
		if len(t.Engines) != 2 {
			return fail("sprt applies to exactly two engines, have %d", len(t.Engines))
		}
		if t.Sprt.Elo0 == t.Sprt.Elo1 {
			return fail("sprt requires elo0 != elo1")
		}
		if t.Sprt.Alpha <= 0 || t.Sprt.Alpha >= 1 || t.Sprt.Beta <= 0 || t.Sprt.Beta >= 1 {
			return fail("sprt alpha and beta must be in (0, 1)")
		}
	}

	return nil
}

// PGNFile resolves the archive path, defaulting to gauntlet.pgn in the
// working directory.
func (t *Tournament) PGNFile() string {
	if strings.TrimSpace(t.Pgn.File) != "" {
		return t.Pgn.File
	}
	return "gauntlet.pgn"
}
