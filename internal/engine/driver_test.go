package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeEngineScript writes a fake UCI engine as a shell script and returns a
// config running it through /bin/sh.
func writeEngineScript(t *testing.T, name, body string) Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return Config{
		Name:  name,
		Cmd:   "/bin/sh",
		Args:  []string{path},
		Limit: Limit{TC: TimeControl{FixedTime: time.Second}},
	}
}

const basicEngine = `#!/bin/sh
while read line; do
  case "$line" in
    uci) echo "id name fake"; echo "uciok" ;;
    isready) echo "readyok" ;;
    go*) echo "info depth 8 score cp 25 pv e2e4"; echo "bestmove e2e4" ;;
    quit) exit 0 ;;
  esac
done
`

const silentEngine = `#!/bin/sh
while read line; do
  case "$line" in
    uci) echo "uciok" ;;
    isready) echo "readyok" ;;
    go*) sleep 3; echo "bestmove e2e4" ;;
    quit) exit 0 ;;
  esac
done
`

func TestDriverStartAndGo(t *testing.T) {
	cfg := writeEngineScript(t, "basic", basicEngine)
	cfg.Options = []Option{{Name: "Hash", Value: "16"}}

	d, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Close()

	if err := d.NewGame(); err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	res, err := d.Go("position startpos", Clock{}, White)
	if err != nil {
		t.Fatalf("Go: %v", err)
	}
	if res.Move != "e2e4" {
		t.Fatalf("unexpected move %q", res.Move)
	}
	if res.Score != 25 || res.Depth != 8 {
		t.Fatalf("unexpected search info: %+v", res)
	}
}

func TestDriverStartFailureMissingBinary(t *testing.T) {
	cfg := Config{
		Name:  "missing",
		Cmd:   filepath.Join(t.TempDir(), "no-such-engine"),
		Limit: Limit{TC: TimeControl{FixedTime: time.Second}},
	}
	_, err := Start(cfg)
	if !errors.Is(err, ErrStart) {
		t.Fatalf("expected ErrStart, got %v", err)
	}
}

func TestDriverStartFailureNoHandshake(t *testing.T) {
	cfg := writeEngineScript(t, "mute", "#!/bin/sh\nexit 0\n")
	_, err := Start(cfg)
	if !errors.Is(err, ErrStart) {
		t.Fatalf("expected ErrStart, got %v", err)
	}
}

func TestDriverGoTimeout(t *testing.T) {
	cfg := writeEngineScript(t, "silent", silentEngine)
	cfg.Limit = Limit{TC: TimeControl{FixedTime: 50 * time.Millisecond}}

	d, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Close()

	started := time.Now()
	_, err = d.Go("position startpos", Clock{}, White)
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestDriverReadLineDeadline(t *testing.T) {
	cfg := writeEngineScript(t, "basic", basicEngine)
	d, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Close()

	// Nothing pending: the deadline must fire without killing the process.
	if _, err := d.ReadLine(time.Now().Add(50 * time.Millisecond)); !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}

	// The engine must still answer afterwards.
	if err := d.WriteLine("isready"); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	line, err := d.ReadLine(time.Now().Add(2 * time.Second))
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "readyok" {
		t.Fatalf("got %q want readyok", line)
	}
}

func TestDriverCloseIdempotent(t *testing.T) {
	cfg := writeEngineScript(t, "basic", basicEngine)
	d, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Close()
	d.Close()
}

func TestParseInfo(t *testing.T) {
	cases := []struct {
		line  string
		score int
		depth int
		ok    bool
	}{
		{"info depth 12 seldepth 20 score cp -42 nodes 100 pv e7e5", -42, 12, true},
		{"info depth 5 score mate 3 pv h5f7", mateScore, 5, true},
		{"info depth 5 score mate -2", -mateScore, 5, true},
		{"info string something", 0, 0, false},
	}
	for _, c := range cases {
		score, depth, ok := parseInfo(c.line)
		if score != c.score || depth != c.depth || ok != c.ok {
			t.Fatalf("parseInfo(%q) = (%d, %d, %v), want (%d, %d, %v)",
				c.line, score, depth, ok, c.score, c.depth, c.ok)
		}
	}
}
