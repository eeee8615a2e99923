package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	photocoach "github.com/menta2k/photo-coach"
	"github.com/menta2k/photo-coach/internal/config"
	"github.com/menta2k/photo-coach/internal/log"
	"github.com/menta2k/photo-coach/internal/utils"
	"github.com/menta2k/photo-coach/pkg/overlay"
	"github.com/menta2k/photo-coach/pkg/recompose"
)

type scoreOptions struct {
	JSON       bool
	OverlayDir string
	Recompose  string
	Scale      float64
	Format     string
}

var scoreOpts scoreOptions

var scoreCmd = &cobra.Command{
	Use:   "score <image|dir|url>...",
	Short: "Score photos and append the results to the score log",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, args, scoreOpts)
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreOpts.JSON, "json", false, "print evaluations as JSON lines")
	scoreCmd.Flags().StringVar(&scoreOpts.OverlayDir, "overlay-dir", "", "write images with thirds grid, subject box and score to this directory")
	scoreCmd.Flags().StringVar(&scoreOpts.Recompose, "recompose", "", "write suggested thirds crops to this directory")
	scoreCmd.Flags().Float64Var(&scoreOpts.Scale, "crop-scale", 0.8, "crop size relative to the frame for --recompose (0..1)")
	scoreCmd.Flags().StringVar(&scoreOpts.Format, "format", "", "image format for overlays and crops: jpg, png or webp (default from config)")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string, opts scoreOptions) error {
	ctx := cmd.Context()

	format := cfg.Output.Format
	if opts.Format != "" {
		format = strings.ToLower(opts.Format)
		if !slices.Contains(config.Formats, format) {
			return fmt.Errorf("unsupported format %q (use %s)", opts.Format, strings.Join(config.Formats, ", "))
		}
	}

	files, err := utils.CollectImages(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found")
	}

	for _, dir := range []string{opts.OverlayDir, opts.Recompose} {
		if dir == "" {
			continue
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	rc := recompose.NewWithConfig(recompose.Config{Scale: opts.Scale, MinImprovement: recompose.DefaultConfig().MinImprovement})
	proc := p.coach.Processor()
	out := cmd.OutOrStdout()

	var failed int
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, img, err := p.coach.EvaluateFile(ctx, file)
		if err != nil && !errors.Is(err, photocoach.ErrScoreLog) {
			log.Error("scoring failed", "image", file, "error", err)
			failed++
			continue
		}
		if err != nil {
			log.Warn("score not logged", "image", file, "error", err)
		}

		if opts.JSON {
			if err := json.NewEncoder(out).Encode(ev); err != nil {
				return err
			}
		} else {
			printEvaluation(out, ev)
		}

		if opts.OverlayDir != "" {
			rendered := overlay.Render(img, overlay.Options{Grid: true, Main: ev.Main, Score: &ev.Report})
			path := utils.GenerateOutputFilename(file, opts.OverlayDir, "", "_overlay", format)
			if err := proc.SaveImage(rendered, path, format, cfg.Output.JPEGQuality, false); err != nil {
				log.Error("overlay save failed", "path", path, "error", err)
			} else {
				log.Info("wrote overlay", "path", path)
			}
		}

		if opts.Recompose != "" && ev.Main != nil {
			s, ok, err := rc.Suggest(img, *ev.Main)
			if err != nil {
				log.Warn("recompose failed", "image", file, "error", err)
				continue
			}
			if !ok {
				continue
			}
			path := utils.GenerateOutputFilename(file, opts.Recompose, "", "_thirds", format)
			if err := proc.SaveImage(s.Image, path, format, cfg.Output.JPEGQuality, false); err != nil {
				log.Error("crop save failed", "path", path, "error", err)
				continue
			}
			fmt.Fprintf(out, "  crop %v raises position %.2f -> %.2f: %s\n", s.Region, s.Before, s.After, path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be scored", failed, len(files))
	}
	return nil
}

// printEvaluation writes a human readable report
func printEvaluation(w io.Writer, ev photocoach.Evaluation) {
	r := ev.Report
	fmt.Fprintf(w, "%s: %.2f\n", ev.ID, r.FinalScore)
	if ev.Main != nil {
		fmt.Fprintf(w, "  subject: %s\n", overlay.Label(*ev.Main))
	} else {
		fmt.Fprintln(w, "  subject: none")
	}
	fmt.Fprintf(w, "  position %.2f  angle %.2f  lighting %.2f  focus %.2f\n", r.Position, r.Angle, r.Lighting, r.Focus)
	if len(r.Feedback) > 0 {
		fmt.Fprintf(w, "  feedback: %s\n", strings.Join(r.Feedback, "; "))
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}
