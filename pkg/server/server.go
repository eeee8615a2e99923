// Package server exposes the photo coach over HTTP
package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	photocoach "github.com/menta2k/photo-coach"
	"github.com/menta2k/photo-coach/internal/log"
	"github.com/menta2k/photo-coach/pkg/overlay"
	"github.com/menta2k/photo-coach/pkg/processing"
	"github.com/menta2k/photo-coach/pkg/scorelog"
)

const (
	defaultHistory = 20
	maxHistory     = 500
)

// History returns the most recent logged reports
type History interface {
	Recent(ctx context.Context, n int) ([]scorelog.Entry, error)
}

// Config holds server options
type Config struct {
	MaxBodyBytes int
	JPEGQuality  int
	History      History // optional, enables GET /v1/scores
}

// ScoreResponse is the body returned by POST /v1/score
type ScoreResponse struct {
	photocoach.Evaluation
	LogError string `json:"log_error,omitempty"`
}

// Server is the HTTP API around a Coach
type Server struct {
	app     *fiber.App
	coach   *photocoach.Coach
	config  Config
	decoder *processing.Processor
}

// New creates a server for coach
func New(coach *photocoach.Coach, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 20 * 1024 * 1024
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}

	s := &Server{
		coach:   coach,
		config:  cfg,
		decoder: coach.Processor(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "photo-coach",
		DisableStartupMessage: true,
		BodyLimit:             cfg.MaxBodyBytes,
	})
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(coach.Metrics().Handler()))

	api := app.Group("/v1")
	api.Post("/score", s.handleScore)
	api.Post("/overlay", s.handleOverlay)
	api.Get("/scores", s.handleHistory)

	s.app = app
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	log.Info("photo coach api listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": photocoach.GetVersion(),
	})
}

// handleScore scores the uploaded "image" form file
func (s *Server) handleScore(c *fiber.Ctx) error {
	frame, err := s.readFrame(c)
	if err != nil {
		return err
	}

	ev, err := s.coach.Evaluate(c.UserContext(), c.FormValue("id"), frame)
	if err != nil {
		if !errors.Is(err, photocoach.ErrScoreLog) {
			return evaluateError(err)
		}
		log.Warn("score not logged", "id", ev.ID, "error", err)
		return c.JSON(ScoreResponse{Evaluation: ev, LogError: err.Error()})
	}

	return c.JSON(ScoreResponse{Evaluation: ev})
}

// handleOverlay scores the upload and returns it as a JPEG with the thirds
// grid, the main object box and the final score drawn on top
func (s *Server) handleOverlay(c *fiber.Ctx) error {
	frame, err := s.readFrame(c)
	if err != nil {
		return err
	}

	ev, err := s.coach.Evaluate(c.UserContext(), c.FormValue("id"), frame)
	if err != nil && !errors.Is(err, photocoach.ErrScoreLog) {
		return evaluateError(err)
	}

	out := overlay.Render(frame, overlay.Options{Grid: true, Main: ev.Main, Score: &ev.Report})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(s.config.JPEGQuality)); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "encode overlay: "+err.Error())
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set("X-Photo-Score", strconv.FormatFloat(ev.Report.FinalScore, 'f', 2, 64))
	return c.Send(buf.Bytes())
}

// handleHistory lists recent reports, newest first
func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.config.History == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "score history requires a database log")
	}

	n := c.QueryInt("limit", defaultHistory)
	if n < 1 {
		n = defaultHistory
	}
	if n > maxHistory {
		n = maxHistory
	}

	entries, err := s.config.History.Recent(c.UserContext(), n)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(entries)
}

func (s *Server) readFrame(c *fiber.Ctx) (image.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing image form file")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	frame, err := s.decoder.DecodeFrame(data)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return frame, nil
}

func evaluateError(err error) error {
	if errors.Is(err, processing.ErrEmptyFrame) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
