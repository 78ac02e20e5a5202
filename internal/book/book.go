// Package book loads opening positions from EPD or PGN files and serves them
// to tournament workers as an infinite cyclic sequence.
package book

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync/atomic"

	chesslib "github.com/corentings/chess/v2"
)

type Format string

const (
	FormatEPD Format = "epd"
	FormatPGN Format = "pgn"
)

type Order string

const (
	OrderSequential Order = "sequential"
	OrderRandom     Order = "random"
)

// ErrOpeningLoad reports a missing, unreadable or empty opening file. Fatal
// at startup.
var ErrOpeningLoad = errors.New("opening book load failed")

// Opening is one starting position: a FEN, a UCI move prefix from the
// standard start position, or both. Immutable once loaded.
type Opening struct {
	FEN   string
	Moves []string
}

// Book holds the loaded openings and a shared monotonic cursor. Next is safe
// to call from any number of workers; the cursor is an atomic fetch-add so
// the job boundary never serializes on a lock.
type Book struct {
	openings []Opening
	start    uint64
	cursor   atomic.Uint64
}

// Load reads the opening file, optionally shuffles it in place (Fisher-Yates,
// seeded by the tournament seed) and positions the cursor at start.
func Load(path string, format Format, order Order, start int, seed int64) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpeningLoad, err)
	}
	defer f.Close()

	var openings []Opening
	switch format {
	case FormatEPD:
		openings, err = readEPD(f)
	case FormatPGN:
		openings, err = readPGN(f)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrOpeningLoad, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpeningLoad, path, err)
	}
	if len(openings) == 0 {
		return nil, fmt.Errorf("%w: no openings found in %s", ErrOpeningLoad, path)
	}

	if order == OrderRandom {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(openings), func(i, j int) {
			openings[i], openings[j] = openings[j], openings[i]
		})
	}

	if start < 0 {
		start = 0
	}
	return &Book{openings: openings, start: uint64(start)}, nil
}

// Next returns the next opening in cyclic order. Every opening is served once
// before any repeats.
func (b *Book) Next() Opening {
	i := b.cursor.Add(1) - 1
	return b.openings[(b.start+i)%uint64(len(b.openings))]
}

func (b *Book) Len() int { return len(b.openings) }

func readEPD(f *os.File) ([]Opening, error) {
	var openings []Opening
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		openings = append(openings, Opening{FEN: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return openings, nil
}

func readPGN(f *os.File) ([]Opening, error) {
	var openings []Opening
	scanner := chesslib.NewScanner(f)
	for scanner.HasNext() {
		game, err := scanner.ParseNext()
		if err != nil {
			return nil, fmt.Errorf("parse pgn game %d: %w", len(openings)+1, err)
		}
		moves := game.Moves()
		uci := make([]string, 0, len(moves))
		for _, mv := range moves {
			uci = append(uci, mv.String())
		}
		openings = append(openings, Opening{Moves: uci})
	}
	return openings, nil
}
