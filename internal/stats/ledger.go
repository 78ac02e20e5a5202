package stats

import "sync"

// pairKey is an unordered pair of engine names.
type pairKey struct {
	lo, hi string
}

func keyFor(a, b string) pairKey {
	if a <= b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

type pairEntry struct {
	mu sync.Mutex
	// first is the perspective the stored stats are expressed in, fixed by
	// the first update for the pair.
	first string
	stats Stats
}

// Ledger is the shared, thread-safe mapping from engine pairs to cumulative
// Stats. Updates for distinct pairs proceed concurrently; updates for the
// same pair are serialized on a per-entry mutex, so a global lock is never
// held across an update or a snapshot read.
type Ledger struct {
	mu      sync.Mutex
	entries map[pairKey]*pairEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[pairKey]*pairEntry)}
}

func (l *Ledger) entry(first, second string) *pairEntry {
	key := keyFor(first, second)
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &pairEntry{first: first}
		l.entries[key] = e
	}
	l.mu.Unlock()
	return e
}

// Update folds s, expressed from first's perspective, into the pair's record.
func (l *Ledger) Update(first, second string, s Stats) {
	e := l.entry(first, second)
	e.mu.Lock()
	if e.first != first {
		s = s.Invert()
	}
	e.stats = e.stats.Add(s)
	e.mu.Unlock()
}

// Snapshot returns the pair's cumulative stats oriented so that Wins counts
// first's wins. The zero record is returned for pairs never updated.
func (l *Ledger) Snapshot(first, second string) Stats {
	key := keyFor(first, second)
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return Stats{}
	}
	e.mu.Lock()
	s := e.stats
	stored := e.first
	e.mu.Unlock()
	if stored != first {
		s = s.Invert()
	}
	return s
}

// PairSnapshot is one ledger row for reporting.
type PairSnapshot struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Stats  Stats  `json:"stats"`
}

// Snapshots returns a point-in-time copy of every pair's record.
func (l *Ledger) Snapshots() []PairSnapshot {
	l.mu.Lock()
	keys := make([]pairKey, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	l.mu.Unlock()

	out := make([]PairSnapshot, 0, len(keys))
	for _, k := range keys {
		l.mu.Lock()
		e := l.entries[k]
		l.mu.Unlock()
		e.mu.Lock()
		out = append(out, PairSnapshot{First: e.first, Second: otherOf(k, e.first), Stats: e.stats})
		e.mu.Unlock()
	}
	return out
}

func otherOf(k pairKey, name string) string {
	if k.lo == name {
		return k.hi
	}
	return k.lo
}
