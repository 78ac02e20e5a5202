package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gauntlet/internal/engine"
)

func validConfig() *Tournament {
	cfg := Default()
	cfg.Engines = []engine.Config{
		{Name: "alpha", Cmd: "/bin/alpha", Limit: engine.Limit{TC: engine.TimeControl{FixedTime: time.Second}}},
		{Name: "beta", Cmd: "/bin/beta", Limit: engine.Limit{TC: engine.TimeControl{FixedTime: time.Second}}},
	}
	return &cfg
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tournament)
	}{
		{"too few engines", func(c *Tournament) { c.Engines = c.Engines[:1] }},
		{"duplicate names", func(c *Tournament) { c.Engines[1].Name = "alpha" }},
		{"missing cmd", func(c *Tournament) { c.Engines[0].Cmd = "" }},
		{"no limit", func(c *Tournament) { c.Engines[0].Limit = engine.Limit{} }},
		{"zero concurrency", func(c *Tournament) { c.Concurrency = 0 }},
		{"zero rounds", func(c *Tournament) { c.Rounds = 0 }},
		{"three games", func(c *Tournament) { c.Games = 3 }},
		{"penta without pairs", func(c *Tournament) { c.ReportPenta = true; c.Games = 1 }},
		{"bad output", func(c *Tournament) { c.Output = "csv" }},
		{"bad opening format", func(c *Tournament) { c.Opening.File = "x.epd"; c.Opening.Format = "fen" }},
		{"sprt equal elo", func(c *Tournament) { c.Sprt = Sprt{Enabled: true, Alpha: 0.05, Beta: 0.05} }},
		{"sprt bad alpha", func(c *Tournament) { c.Sprt = Sprt{Enabled: true, Alpha: 1.5, Beta: 0.05, Elo1: 5} }},
	}
	for _, c := range cases {
		cfg := validConfig()
		c.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
			t.Fatalf("%s: expected ErrConfig, got %v", c.name, err)
		}
	}
}

const yamlFixture = `event: test gauntlet
concurrency: 4
rounds: 10
games: 2
report_penta: true
seed: 1234
engines:
  - name: alpha
    cmd: ./alpha
    options:
      - name: Hash
        value: "64"
    limit:
      tc:
        time: 10s
        increment: 100ms
  - name: beta
    cmd: ./beta
    limit:
      nodes: 50000
opening:
  file: book.epd
  format: epd
  order: random
sprt:
  enabled: true
  alpha: 0.05
  beta: 0.05
  elo0: 0
  elo1: 5
`

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournament.yaml")
	if err := os.WriteFile(path, []byte(yamlFixture), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.EventName != "test gauntlet" || cfg.Concurrency != 4 || cfg.Rounds != 10 {
		t.Fatalf("tournament options not loaded: %+v", cfg)
	}
	if len(cfg.Engines) != 2 {
		t.Fatalf("expected 2 engines, got %d", len(cfg.Engines))
	}
	alpha := cfg.Engines[0]
	if alpha.Limit.TC.Time != 10*time.Second || alpha.Limit.TC.Increment != 100*time.Millisecond {
		t.Fatalf("time control not parsed: %+v", alpha.Limit.TC)
	}
	if len(alpha.Options) != 1 || alpha.Options[0].Name != "Hash" {
		t.Fatalf("options not parsed: %+v", alpha.Options)
	}
	if cfg.Engines[1].Limit.Nodes != 50000 {
		t.Fatalf("node limit not parsed: %+v", cfg.Engines[1].Limit)
	}
	if !cfg.Sprt.Enabled || cfg.Sprt.Elo1 != 5 {
		t.Fatalf("sprt not parsed: %+v", cfg.Sprt)
	}
	if cfg.Opening.Order != "random" {
		t.Fatalf("opening not parsed: %+v", cfg.Opening)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 1 || cfg.Rounds != 1 || cfg.Games != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestPGNFileDefault(t *testing.T) {
	cfg := Default()
	if cfg.PGNFile() != "gauntlet.pgn" {
		t.Fatalf("default archive name: %q", cfg.PGNFile())
	}
	cfg.Pgn.File = "runs/out.pgn"
	if cfg.PGNFile() != "runs/out.pgn" {
		t.Fatalf("configured archive name: %q", cfg.PGNFile())
	}
}
