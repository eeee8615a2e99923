package main

import (
	"context"
	"errors"
	"fmt"

	photocoach "github.com/menta2k/photo-coach"
	"github.com/menta2k/photo-coach/internal/config"
	"github.com/menta2k/photo-coach/pkg/client"
	"github.com/menta2k/photo-coach/pkg/detection"
	"github.com/menta2k/photo-coach/pkg/llamacpp"
	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/locator/yolo"
	"github.com/menta2k/photo-coach/pkg/ollama"
	"github.com/menta2k/photo-coach/pkg/scorelog"
	"github.com/menta2k/photo-coach/pkg/scoring"
	"github.com/menta2k/photo-coach/pkg/server"
)

const (
	defaultOllamaURL   = "http://localhost:11435/api/chat"
	defaultLlamaCppURL = "http://localhost:8080"
)

// pipeline owns a Coach and the resources behind it
type pipeline struct {
	coach   *photocoach.Coach
	history server.History
	closers []func() error
}

// Close releases the score log and the locator model
func (p *pipeline) Close() error {
	errs := []error{p.coach.Close()}
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildPipeline creates the locator, score log and Coach described by c
func buildPipeline(ctx context.Context, c *config.Config) (*pipeline, error) {
	p := &pipeline{}

	loc, closeLoc, err := buildLocator(c.Locator)
	if err != nil {
		return nil, err
	}
	if closeLoc != nil {
		p.closers = append(p.closers, closeLoc)
	}

	sink, history, err := buildSink(ctx, c.Log)
	if err != nil {
		for _, fn := range p.closers {
			fn()
		}
		return nil, err
	}
	p.history = history

	sc := scoring.DefaultConfig()
	sc.CannyLow = c.Scoring.CannyLow
	sc.CannyHigh = c.Scoring.CannyHigh
	sc.HoughThreshold = c.Scoring.HoughThreshold

	p.coach = photocoach.NewWithConfig(photocoach.Config{
		Scoring: sc,
		Locator: loc,
		Sink:    sink,
	})
	return p, nil
}

// buildLocator returns the configured object locator and an optional closer
func buildLocator(c config.LocatorConfig) (locator.Locator, func() error, error) {
	var vc client.VisionClient
	var err error
	url := c.URL

	switch c.Backend {
	case "none":
		return locator.None, nil, nil
	case "yolo":
		yc := yolo.DefaultConfig()
		yc.ModelPath = c.ModelPath
		yc.ConfidenceThresh = float32(c.ConfidenceThresh)
		yc.NMSThresh = float32(c.NMSThresh)
		// the network stays loaded until the process exits
		model, err := yolo.Shared(yc)
		if err != nil {
			return nil, nil, err
		}
		return yolo.NewLocator(model), nil, nil
	case "ollama":
		if url == "" {
			url = defaultOllamaURL
		}
		vc, err = ollama.NewClient(url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
	case "llamacpp":
		if url == "" {
			url = defaultLlamaCppURL
		}
		vc, err = llamacpp.NewClient(url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s (use yolo, ollama, llamacpp or none)", c.Backend)
	}

	dc := detection.DefaultConfig(c.Model)
	dc.MaxDim = c.SendSize
	dc.JPEGQuality = c.SendQuality
	return detection.NewDetectorWithConfig(vc, dc), nil, nil
}

// buildSink opens the CSV and database score logs that are configured. The
// database log also serves as score history.
func buildSink(ctx context.Context, c config.LogConfig) (scorelog.Sink, server.History, error) {
	var sinks scorelog.Multi
	var history server.History

	if c.CSVPath != "" {
		csvLog, err := scorelog.OpenCSV(c.CSVPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, csvLog)
	}

	if c.DatabaseURL != "" {
		pg, err := scorelog.OpenPostgres(ctx, c.DatabaseURL)
		if err != nil {
			sinks.Close()
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		history = pg
	}

	switch len(sinks) {
	case 0:
		return scorelog.Discard{}, nil, nil
	case 1:
		return sinks[0], history, nil
	default:
		return sinks, history, nil
	}
}
