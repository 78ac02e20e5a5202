// Package archive turns sealed games into PGN records and appends them to the
// tournament's on-disk archive.
package archive

import (
	"fmt"
	"os"
	"sync"
)

// Writer serializes appends to the archive file so records from concurrent
// workers never interleave.
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &Writer{f: f}, nil
}

// Append writes one complete record followed by a blank separator line.
func (w *Writer) Append(record string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.WriteString(record + "\n\n"); err != nil {
		return fmt.Errorf("append archive record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
