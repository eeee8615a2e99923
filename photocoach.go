// Package photocoach scores camera frames for composition and exposure.
//
// A Coach ties together an object locator, the photo quality scorer and a
// score log:
//
//	coach := photocoach.NewWithConfig(photocoach.Config{
//		Locator: yolo.NewLocator(model),
//		Sink:    csvLog,
//	})
//
//	ev, _, err := coach.EvaluateFile(ctx, "photo.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Final score: %.2f\n", ev.Report.FinalScore)
//	for _, s := range ev.Report.Suggestions {
//		fmt.Println(" -", s)
//	}
//
// The package consists of these main components:
//
// 1. Locator (pkg/locator): finds objects; backends in pkg/locator/yolo and pkg/detection
// 2. Scoring (pkg/scoring): position, angle, lighting and focus sub-scores
// 3. Score log (pkg/scorelog): CSV and PostgreSQL persistence
// 4. Overlay and recompose (pkg/overlay, pkg/recompose): visual guides and crop hints
//
// Locator failures never fail a frame: they are counted, logged and scored
// as "no subject". Score log failures are returned after the report has been
// computed, so callers still get the result.
package photocoach

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/metrics"
	"github.com/menta2k/photo-coach/pkg/processing"
	"github.com/menta2k/photo-coach/pkg/scorelog"
	"github.com/menta2k/photo-coach/pkg/scoring"
	"github.com/menta2k/photo-coach/pkg/types"
)

// Version of the photo-coach library
const Version = "1.0.0"

// ErrScoreLog marks an evaluation whose report was computed but not persisted
var ErrScoreLog = errors.New("score log")

// Config wires the components of a Coach. Nil fields get defaults.
type Config struct {
	Scoring scoring.Config
	Locator locator.Locator
	Sink    scorelog.Sink
	Metrics *metrics.Metrics
}

// Coach runs the locate, score and log pipeline for single frames
type Coach struct {
	locator   locator.Locator
	scorer    *scoring.Scorer
	sink      scorelog.Sink
	metrics   *metrics.Metrics
	processor *processing.Processor
}

// Evaluation is the outcome of one frame
type Evaluation struct {
	ID      string                 `json:"id"`
	Objects []types.DetectedObject `json:"objects"`
	Main    *types.DetectedObject  `json:"main,omitempty"`
	Report  types.ScoreReport      `json:"report"`
}

// New creates a Coach that finds no objects and logs nowhere
func New() *Coach {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Coach from explicit components
func NewWithConfig(cfg Config) *Coach {
	if cfg.Locator == nil {
		cfg.Locator = locator.None
	}
	if cfg.Sink == nil {
		cfg.Sink = scorelog.Discard{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	c := &Coach{
		scorer:    scoring.NewWithConfig(cfg.Scoring),
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		processor: processing.NewProcessor(),
	}
	c.locator = locator.FailSoft(cfg.Locator, func(error) {
		c.metrics.LocatorErrors.Add(1)
	})
	return c
}

// Metrics returns the pipeline metrics
func (c *Coach) Metrics() *metrics.Metrics {
	return c.metrics
}

// Processor returns the frame processor used for loading and saving
func (c *Coach) Processor() *processing.Processor {
	return c.processor
}

// Evaluate locates objects in frame, scores it and appends the report to the
// score log under id. An empty id is replaced by a random UUID. When only
// the log write fails, the evaluation is returned together with the error.
func (c *Coach) Evaluate(ctx context.Context, id string, frame image.Image) (Evaluation, error) {
	if err := c.processor.ValidateFrame(frame); err != nil {
		return Evaluation{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	start := time.Now()

	objects, err := c.locator.Locate(ctx, frame)
	if err != nil {
		return Evaluation{}, err
	}

	ev := Evaluation{ID: id, Objects: objects}
	if main, ok := locator.MainObject(objects); ok {
		ev.Main = &main
	}
	ev.Report = c.scorer.Score(frame, objects)

	c.metrics.ObserveReport(ev.Report, ev.Main != nil, time.Since(start))

	if err := c.sink.Append(ctx, id, ev.Report); err != nil {
		c.metrics.LogErrors.Add(1)
		return ev, fmt.Errorf("%w: %w", ErrScoreLog, err)
	}
	return ev, nil
}

// EvaluateFile loads an image from a path or URL and evaluates it with the
// source as its id
func (c *Coach) EvaluateFile(ctx context.Context, source string) (Evaluation, image.Image, error) {
	img, err := c.processor.LoadImageSmart(source)
	if err != nil {
		return Evaluation{}, nil, fmt.Errorf("failed to load image: %w", err)
	}

	ev, err := c.Evaluate(ctx, source, img)
	return ev, img, err
}

// Close closes the score log
func (c *Coach) Close() error {
	return c.sink.Close()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
