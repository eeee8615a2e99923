// Package scoring rates a captured frame on subject placement, horizon tilt,
// exposure and sharpness, and turns the sub-scores into a weighted final
// score with human-readable feedback.
package scoring

import (
	"image"
	"math"
	"strconv"

	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/types"
	"github.com/menta2k/photo-coach/pkg/vision"
)

// Weights of the sub-scores in the final score
const (
	PositionWeight = 0.4
	AngleWeight    = 0.2
	LightingWeight = 0.2
	FocusWeight    = 0.2
)

const (
	minScore     = 1.0
	maxScore     = 10.0
	neutralScore = 5.0

	// sub-scores below this value produce feedback
	feedbackThreshold = 5.0

	targetBrightness = 130.0
	darkBrightness   = 100.0
	brightBrightness = 180.0

	blurVariance  = 50.0
	sharpVariance = 200.0
)

// Scorer computes photo quality reports. It holds only immutable
// configuration, so one Scorer may score many frames concurrently.
type Scorer struct {
	config Config
}

// Config holds the edge and line detection parameters used by the angle score
type Config struct {
	CannyLow       float64
	CannyHigh      float64
	HoughRho       float64
	HoughTheta     float64
	HoughThreshold int
}

// DefaultConfig returns the standard edge/line detection parameters
func DefaultConfig() Config {
	return Config{
		CannyLow:       50,
		CannyHigh:      150,
		HoughRho:       1,
		HoughTheta:     math.Pi / 180,
		HoughThreshold: 100,
	}
}

// New creates a new Scorer with default configuration
func New() *Scorer {
	return &Scorer{config: DefaultConfig()}
}

// NewWithConfig creates a new Scorer with custom configuration.
// Zero fields fall back to their defaults.
func NewWithConfig(config Config) *Scorer {
	def := DefaultConfig()
	if config.CannyLow <= 0 {
		config.CannyLow = def.CannyLow
	}
	if config.CannyHigh <= 0 {
		config.CannyHigh = def.CannyHigh
	}
	if config.HoughRho <= 0 {
		config.HoughRho = def.HoughRho
	}
	if config.HoughTheta <= 0 {
		config.HoughTheta = def.HoughTheta
	}
	if config.HoughThreshold <= 0 {
		config.HoughThreshold = def.HoughThreshold
	}
	return &Scorer{config: config}
}

// Config returns the scorer configuration
func (s *Scorer) Config() Config {
	return s.config
}

// NoSubjectReport is the fixed report returned when nothing was detected
func NoSubjectReport() types.ScoreReport {
	return types.ScoreReport{
		FinalScore:  1,
		Position:    1,
		Angle:       1,
		Lighting:    1,
		Focus:       1,
		Feedback:    []string{"No subject detected."},
		Suggestions: []string{"Move subject into frame."},
	}
}

// Score rates a frame given the objects detected in it. The frame is never
// modified. An empty object list short-circuits to NoSubjectReport without
// looking at the pixels.
func (s *Scorer) Score(frame image.Image, objects []types.DetectedObject) types.ScoreReport {
	if len(objects) == 0 {
		return NoSubjectReport()
	}

	m := s.measure(frame, objects)

	report := types.ScoreReport{
		Position: positionScore(m.subject),
		Angle:    angleScore(m.avgAngle, m.lines),
		Lighting: lightingScore(m.brightness),
		Focus:    focusScore(m.variance),
	}
	report.FinalScore = FinalScore(report.Position, report.Angle, report.Lighting, report.Focus)
	report.Feedback, report.Suggestions = buildFeedback(m, report)

	return report
}

// FinalScore combines sub-scores with the fixed weights, rounded to 2 decimals
func FinalScore(position, angle, lighting, focus float64) float64 {
	return round2(PositionWeight*position + AngleWeight*angle + LightingWeight*lighting + FocusWeight*focus)
}

// measurements holds everything derived from the frame once, so feedback
// generation reads explicit values instead of recomputing geometry.
type measurements struct {
	width, height int

	lines    int
	avgAngle float64

	brightness float64
	variance   float64

	subject *subjectGeometry
}

// subjectGeometry places the main object relative to the rule-of-thirds lines
type subjectGeometry struct {
	width, height int
	cx, cy        int
	thirdsX       [2]int
	thirdsY       [2]int
}

func (s *Scorer) measure(frame image.Image, objects []types.DetectedObject) measurements {
	bounds := frame.Bounds()
	m := measurements{width: bounds.Dx(), height: bounds.Dy()}

	gray := vision.Grayscale(frame)

	edges := vision.CannyColor(frame, s.config.CannyLow, s.config.CannyHigh)
	lines := vision.HoughLines(edges, s.config.HoughRho, s.config.HoughTheta, s.config.HoughThreshold)
	m.lines = len(lines)
	if len(lines) > 0 {
		var sum float64
		for _, l := range lines {
			sum += math.Abs(l.Degrees())
		}
		m.avgAngle = sum / float64(len(lines))
	}

	m.brightness = vision.MeanBrightness(gray)
	m.variance = vision.LaplacianVariance(gray)

	if main, ok := locator.MainObject(objects); ok {
		m.subject = newSubjectGeometry(bounds, main)
	}

	return m
}

func newSubjectGeometry(bounds image.Rectangle, obj types.DetectedObject) *subjectGeometry {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	cx, cy := obj.Center()
	return &subjectGeometry{
		width:   w,
		height:  h,
		cx:      cx - bounds.Min.X,
		cy:      cy - bounds.Min.Y,
		thirdsX: [2]int{w / 3, 2 * w / 3},
		thirdsY: [2]int{h / 3, 2 * h / 3},
	}
}

// PositionScore rates where obj sits inside a frame with the given bounds,
// using the same rule as Score.
func PositionScore(bounds image.Rectangle, obj types.DetectedObject) float64 {
	return positionScore(newSubjectGeometry(bounds, obj))
}

// positionScore rewards a subject centre close to the rule-of-thirds lines
func positionScore(g *subjectGeometry) float64 {
	if g == nil {
		return neutralScore
	}

	dx := float64(min(absInt(g.cx-g.thirdsX[0]), absInt(g.cx-g.thirdsX[1]))) / float64(g.width)
	dy := float64(min(absInt(g.cy-g.thirdsY[0]), absInt(g.cy-g.thirdsY[1]))) / float64(g.height)

	return clampScore(round2(10 - (dx+dy)*10))
}

// angleScore maps the mean absolute line angle to a score peaking at 90°.
// With no detected lines the score is neutral.
func angleScore(avgAngle float64, lines int) float64 {
	if lines == 0 {
		return neutralScore
	}
	return clampScore(round2(10 - math.Abs(avgAngle-90)/9))
}

// lightingScore falls off linearly from the target brightness
func lightingScore(brightness float64) float64 {
	return round2(clampScore(10 - math.Abs(targetBrightness-brightness)/10))
}

// focusScore maps Laplacian variance onto 1-10 between the blur and sharp limits
func focusScore(variance float64) float64 {
	switch {
	case variance < blurVariance:
		return minScore
	case variance > sharpVariance:
		return maxScore
	default:
		return clampScore(round2((variance - blurVariance) / 15))
	}
}

func clampScore(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

// round2 rounds to 2 decimals from the exact binary value, so 9.475 (stored
// as 9.47499...) becomes 9.47 rather than the 9.48 that scaling by 100 gives.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
