package engine

import (
	"fmt"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// TimeControl describes the game clock handed to an engine via the "go"
// command. Durations are sent to the engine in milliseconds.
type TimeControl struct {
	Time      time.Duration `yaml:"time"`
	Increment time.Duration `yaml:"increment"`
	FixedTime time.Duration `yaml:"movetime"`
	Moves     int           `yaml:"moves"`
}

func (tc TimeControl) Enabled() bool {
	return tc.Time > 0 || tc.FixedTime > 0
}

// String renders the control in the moves/time+increment form used by the
// PGN TimeControl header, e.g. "40/60+1".
func (tc TimeControl) String() string {
	var sb strings.Builder
	if tc.Moves > 0 {
		fmt.Fprintf(&sb, "%d/", tc.Moves)
	}
	fmt.Fprintf(&sb, "%g", tc.Time.Seconds())
	if tc.Increment > 0 {
		fmt.Fprintf(&sb, "+%g", tc.Increment.Seconds())
	}
	return sb.String()
}

// UnmarshalYAML accepts Go duration strings ("10s", "100ms") for the clock
// fields, which yaml does not decode into time.Duration on its own.
func (tc *TimeControl) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Time      string `yaml:"time"`
		Increment string `yaml:"increment"`
		Movetime  string `yaml:"movetime"`
		Moves     int    `yaml:"moves"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parse := func(field, s string, dst *time.Duration) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("tc %s %q: %w", field, s, err)
		}
		*dst = d
		return nil
	}
	if err := parse("time", raw.Time, &tc.Time); err != nil {
		return err
	}
	if err := parse("increment", raw.Increment, &tc.Increment); err != nil {
		return err
	}
	if err := parse("movetime", raw.Movetime, &tc.FixedTime); err != nil {
		return err
	}
	tc.Moves = raw.Moves
	return nil
}

// Limit bounds a single search. At least one of the fields must be set.
type Limit struct {
	TC    TimeControl `yaml:"tc"`
	Nodes int64       `yaml:"nodes"`
	Plies int         `yaml:"plies"`
}

func (l Limit) Validate() error {
	if !l.TC.Enabled() && l.Nodes <= 0 && l.Plies <= 0 {
		return fmt.Errorf("no search limit specified: set tc, nodes or plies")
	}
	if l.TC.Time < 0 || l.TC.Increment < 0 || l.TC.FixedTime < 0 {
		return fmt.Errorf("negative time control")
	}
	return nil
}

// Option is a UCI option sent before the first game.
type Option struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Config describes one engine participating in a tournament. Immutable after
// configuration load.
type Config struct {
	Name    string   `yaml:"name"`
	Cmd     string   `yaml:"cmd"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
	Options []Option `yaml:"options"`
	Limit   Limit    `yaml:"limit"`
	Variant string   `yaml:"variant"`
	Recover bool     `yaml:"recover"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("engine name required")
	}
	if strings.TrimSpace(c.Cmd) == "" {
		return fmt.Errorf("engine %s: cmd required", c.Name)
	}
	if err := c.Limit.Validate(); err != nil {
		return fmt.Errorf("engine %s: %w", c.Name, err)
	}
	return nil
}
