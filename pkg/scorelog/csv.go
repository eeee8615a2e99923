package scorelog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/menta2k/photo-coach/pkg/types"
)

// DefaultCSVPath is the log file used when none is configured. Scores are
// written in their shortest form, so whole values appear as "10" and "1"
// even in logs whose older rows say "10.0".
const DefaultCSVPath = "photo_scores.csv"

// CSVLog appends rows to a CSV file. The header is written only when the
// file is new or empty, so reopening an existing log keeps appending.
type CSVLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// OpenCSV opens (or creates) the log at path
func OpenCSV(path string) (*CSVLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open score log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat score log: %w", err)
	}

	l := &CSVLog{path: path, file: f, writer: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write score log header: %w", err)
		}
	}
	return l, nil
}

// Path returns the file the log writes to
func (l *CSVLog) Path() string {
	return l.path
}

// Append writes one row and flushes it to disk
func (l *CSVLog) Append(ctx context.Context, imageID string, report types.ScoreReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return ErrClosed
	}
	if err := l.write(Row(imageID, report)); err != nil {
		return fmt.Errorf("failed to append score for %s: %w", imageID, err)
	}
	return nil
}

func (l *CSVLog) write(record []string) error {
	if err := l.writer.Write(record); err != nil {
		return err
	}
	l.writer.Flush()
	return l.writer.Error()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	err := l.writer.Error()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}
