// Package recompose suggests a tighter framing that puts the main subject on
// a rule-of-thirds intersection.
package recompose

import (
	"fmt"
	"image"
	"math"

	"github.com/menta2k/photo-coach/pkg/processing"
	"github.com/menta2k/photo-coach/pkg/scoring"
	"github.com/menta2k/photo-coach/pkg/types"
)

// Recomposer computes crop suggestions
type Recomposer struct {
	config    Config
	processor *processing.Processor
}

// Config holds configuration for recomposition
type Config struct {
	// Scale is the crop size relative to the frame, in (0,1]
	Scale float64
	// MinImprovement is the position gain below which no crop is suggested
	MinImprovement float64
}

// Suggestion is a proposed crop
type Suggestion struct {
	Image  image.Image
	Region image.Rectangle
	// Position scores of the subject before and after cropping
	Before float64
	After  float64
}

// Improves reports whether the crop places the subject better than the frame
func (s Suggestion) Improves() bool {
	return s.After > s.Before
}

// DefaultConfig returns the default crop scale and minimum gain
func DefaultConfig() Config {
	return Config{
		Scale:          0.8,
		MinImprovement: 0.5,
	}
}

// New creates a new Recomposer with default configuration
func New() *Recomposer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new Recomposer with custom configuration
func NewWithConfig(config Config) *Recomposer {
	if config.Scale <= 0 || config.Scale > 1 {
		config.Scale = DefaultConfig().Scale
	}
	return &Recomposer{config: config, processor: processing.NewProcessor()}
}

// thirds are the four intersections as fractions of the crop size
var thirds = [4][2]float64{{1.0 / 3, 1.0 / 3}, {2.0 / 3, 1.0 / 3}, {1.0 / 3, 2.0 / 3}, {2.0 / 3, 2.0 / 3}}

// Suggest finds the crop with the frame's aspect ratio that best places main
// on a thirds intersection. It returns ok=false when no crop improves the
// position score by at least MinImprovement.
func (r *Recomposer) Suggest(frame image.Image, main types.DetectedObject) (Suggestion, bool, error) {
	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Suggestion{}, false, fmt.Errorf("invalid image dimensions")
	}

	cw := int(math.Round(float64(w) * r.config.Scale))
	ch := int(math.Round(float64(h) * r.config.Scale))
	if cw < 3 || ch < 3 {
		return Suggestion{}, false, fmt.Errorf("crop too small: %dx%d", cw, ch)
	}

	before := scoring.PositionScore(bounds, main)
	cx, cy := main.Center()

	best := Suggestion{Before: before, After: -1}
	for _, t := range thirds {
		x0 := clampInt(cx-int(math.Round(t[0]*float64(cw))), bounds.Min.X, bounds.Max.X-cw)
		y0 := clampInt(cy-int(math.Round(t[1]*float64(ch))), bounds.Min.Y, bounds.Max.Y-ch)
		region := image.Rect(x0, y0, x0+cw, y0+ch)

		if after := scoring.PositionScore(region, main); after > best.After {
			best.Region = region
			best.After = after
		}
	}

	if best.After-before < r.config.MinImprovement {
		return best, false, nil
	}

	img, err := r.processor.CropImage(frame, best.Region)
	if err != nil {
		return best, false, err
	}
	best.Image = img
	return best, true, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
