// Package scorelog persists score reports, one row per scored image.
package scorelog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/menta2k/photo-coach/pkg/types"
)

// ErrClosed is returned by Append after Close
var ErrClosed = errors.New("score log closed")

// Header is the column row written at the top of a new log
var Header = []string{"Image", "Final Score", "Position", "Angle", "Lighting", "Focus", "Feedback", "Suggestions"}

// ListSeparator joins feedback and suggestion messages into one column
const ListSeparator = "; "

// Sink receives score reports keyed by image identifier
type Sink interface {
	Append(ctx context.Context, imageID string, report types.ScoreReport) error
	Close() error
}

// Row formats a report as log columns in Header order
func Row(imageID string, r types.ScoreReport) []string {
	return []string{
		imageID,
		formatScore(r.FinalScore),
		formatScore(r.Position),
		formatScore(r.Angle),
		formatScore(r.Lighting),
		formatScore(r.Focus),
		strings.Join(r.Feedback, ListSeparator),
		strings.Join(r.Suggestions, ListSeparator),
	}
}

// formatScore writes the shortest representation: 5.87, 10, 1
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Multi fans each row out to every sink. All sinks are attempted even if
// some fail; the failures are joined.
type Multi []Sink

// Append writes the row to every sink
func (m Multi) Append(ctx context.Context, imageID string, report types.ScoreReport) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, imageID, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every row
type Discard struct{}

// Append does nothing
func (Discard) Append(context.Context, string, types.ScoreReport) error {
	return nil
}

// Close does nothing
func (Discard) Close() error {
	return nil
}
