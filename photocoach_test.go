package photocoach

import (
	"context"
	"encoding/csv"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/processing"
	"github.com/menta2k/photo-coach/pkg/scorelog"
	"github.com/menta2k/photo-coach/pkg/types"
)

// createTestImage creates a flat mid-gray frame
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{130, 130, 130, 255})
		}
	}
	return img
}

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.locator == nil || c.scorer == nil || c.sink == nil || c.metrics == nil {
		t.Error("Expected all components to be set")
	}
}

func TestEvaluateWritesScoreLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo_scores.csv")
	sink, err := scorelog.OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}

	c := NewWithConfig(Config{
		Locator: locator.Static{
			{Label: "cup", Confidence: 0.3, BBox: image.Rect(0, 0, 20, 20)},
			{Label: "person", Confidence: 0.9, BBox: image.Rect(100, 100, 200, 200)},
		},
		Sink: sink,
	})

	ev, err := c.Evaluate(context.Background(), "frame-1", createTestImage(300, 300))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if ev.Main == nil || ev.Main.Label != "person" {
		t.Errorf("Expected main object person, got %+v", ev.Main)
	}
	if ev.Report.FinalScore != 5.87 {
		t.Errorf("Expected final score 5.87, got %v", ev.Report.FinalScore)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(records) != 2 || records[1][0] != "frame-1" || records[1][1] != "5.87" {
		t.Errorf("Unexpected log contents: %v", records)
	}

	if got := c.Metrics().FramesScored.Load(); got != 1 {
		t.Errorf("Expected 1 frame scored, got %d", got)
	}
}

func TestEvaluateLocatorFailureScoresNoSubject(t *testing.T) {
	broken := locator.Func(func(ctx context.Context, frame image.Image) ([]types.DetectedObject, error) {
		return nil, errors.New("model offline")
	})
	c := NewWithConfig(Config{Locator: broken})

	ev, err := c.Evaluate(context.Background(), "", createTestImage(64, 64))
	if err != nil {
		t.Fatalf("Expected locator failure to be softened, got %v", err)
	}
	if ev.ID == "" {
		t.Error("Expected a generated id")
	}
	if ev.Main != nil || ev.Report.FinalScore != 1 {
		t.Errorf("Expected no-subject report, got %+v", ev)
	}

	m := c.Metrics()
	if m.LocatorErrors.Load() != 1 || m.NoSubjectFrames.Load() != 1 {
		t.Errorf("Expected locator error and no-subject counters of 1, got %d and %d",
			m.LocatorErrors.Load(), m.NoSubjectFrames.Load())
	}
}

type brokenSink struct{}

func (brokenSink) Append(context.Context, string, types.ScoreReport) error {
	return errors.New("read-only filesystem")
}

func (brokenSink) Close() error { return nil }

func TestEvaluateLogFailureKeepsReport(t *testing.T) {
	c := NewWithConfig(Config{
		Locator: locator.Static{{Label: "dog", Confidence: 0.5, BBox: image.Rect(10, 10, 30, 30)}},
		Sink:    brokenSink{},
	})

	ev, err := c.Evaluate(context.Background(), "x", createTestImage(90, 90))
	if !errors.Is(err, ErrScoreLog) {
		t.Fatalf("Expected ErrScoreLog, got %v", err)
	}
	if ev.Report.Feedback == nil || ev.Main == nil {
		t.Errorf("Expected computed report alongside the error, got %+v", ev)
	}
	if c.Metrics().LogErrors.Load() != 1 {
		t.Errorf("Expected 1 log error, got %d", c.Metrics().LogErrors.Load())
	}
}

func TestEvaluateRejectsEmptyFrame(t *testing.T) {
	_, err := New().Evaluate(context.Background(), "x", image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !errors.Is(err, processing.ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame, got %v", err)
	}
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluateFile(t *testing.T) {
	p := processing.NewProcessor()
	path, err := p.SavePhoto(createTestImage(60, 40), t.TempDir(), testTime, 95)
	if err != nil {
		t.Fatalf("SavePhoto failed: %v", err)
	}

	ev, img, err := New().EvaluateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("EvaluateFile failed: %v", err)
	}
	if ev.ID != path {
		t.Errorf("Expected id %s, got %s", path, ev.ID)
	}
	if img.Bounds().Dx() != 60 {
		t.Errorf("Expected loaded width 60, got %d", img.Bounds().Dx())
	}

	if _, _, err := New().EvaluateFile(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected %s, got %s", Version, GetVersion())
	}
}
