package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	photocoach "github.com/menta2k/photo-coach"
	"github.com/menta2k/photo-coach/internal/log"
	"github.com/menta2k/photo-coach/pkg/overlay"
	"github.com/menta2k/photo-coach/pkg/stream"
)

type watchOptions struct {
	Input         string
	FPS           float64
	Nth           int
	Width         int
	Height        int
	SaveThreshold float64
	SaveDir       string
}

var watchOpts watchOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Score a live MJPEG stream or a video frame by frame",
	Long: `Reads JPEG frames from stdin or decodes --input with ffmpeg, scores every
nth frame and saves frames whose final score reaches --save-threshold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, watchOpts)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOpts.Input, "input", "i", "-", "video file, device or URL for ffmpeg; - reads MJPEG from stdin")
	watchCmd.Flags().Float64Var(&watchOpts.FPS, "fps", 0, "resample the input to this frame rate (0 keeps the source rate)")
	watchCmd.Flags().IntVarP(&watchOpts.Nth, "nth-frame", "n", 1, "score every nth frame")
	watchCmd.Flags().IntVar(&watchOpts.Width, "width", 0, "resize frames to this width before scoring (needs --height)")
	watchCmd.Flags().IntVar(&watchOpts.Height, "height", 0, "resize frames to this height before scoring (needs --width)")
	watchCmd.Flags().Float64VarP(&watchOpts.SaveThreshold, "save-threshold", "t", 0, "save frames scoring at least this much (0 disables saving)")
	watchCmd.Flags().StringVar(&watchOpts.SaveDir, "save-dir", "", "directory for saved photos (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, opts watchOptions) error {
	ctx := cmd.Context()
	if opts.SaveDir == "" {
		opts.SaveDir = cfg.Output.PhotoDir
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	var src io.Reader = cmd.InOrStdin()
	total := -1

	var decoder *stream.Decoder
	if opts.Input != "-" {
		decoder, err = stream.StartFFmpeg(ctx, opts.Input, opts.FPS)
		if err != nil {
			return err
		}
		src = decoder.Output()

		if opts.FPS <= 0 {
			if n := stream.ProbeFrameCount(ctx, opts.Input); n > 0 {
				total = n
			}
		}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Scoring frames"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	proc := p.coach.Processor()
	var best photocoach.Evaluation
	var lastSaved time.Time

	stats, err := stream.Each(ctx, src, stream.Options{
		Nth:    opts.Nth,
		OnRead: func() { bar.Add(1) },
	}, func(f stream.Frame) error {
		frame, err := proc.DecodeFrame(f.Data)
		if err != nil {
			log.Warn("skipping undecodable frame", "frame", f.Index, "error", err)
			return nil
		}
		if opts.Width > 0 && opts.Height > 0 {
			frame = proc.FitToDisplay(frame, opts.Width, opts.Height)
		}

		ev, err := p.coach.Evaluate(ctx, fmt.Sprintf("frame_%06d", f.Index), frame)
		if err != nil {
			if !errors.Is(err, photocoach.ErrScoreLog) {
				return err
			}
			log.Warn("score not logged", "frame", f.Index, "error", err)
		}
		log.Debug("frame scored", "frame", f.Index, "final", ev.Report.FinalScore)

		if ev.Report.FinalScore > best.Report.FinalScore {
			best = ev
		}

		if opts.SaveThreshold > 0 && ev.Report.FinalScore >= opts.SaveThreshold {
			now := time.Now()
			// saved names have second resolution
			if now.Truncate(time.Second).Equal(lastSaved.Truncate(time.Second)) {
				return nil
			}
			path, err := proc.SavePhoto(photoForSave(frame, ev), opts.SaveDir, now, cfg.Output.JPEGQuality)
			if err != nil {
				return err
			}
			lastSaved = now
			log.Info("saved photo", "path", path, "final", ev.Report.FinalScore)
		}
		return nil
	})
	bar.Finish()

	if decoder != nil {
		if err != nil || ctx.Err() != nil {
			// ffmpeg is still writing; a live source would never finish
			if serr := decoder.Stop(); serr != nil {
				log.Warn("ffmpeg stopped with error", "error", serr)
			}
		} else if werr := decoder.Wait(); werr != nil {
			err = werr
		}
	}

	fmt.Fprintf(os.Stderr, "\n%d frames read, %d scored\n", stats.Read, stats.Sampled)
	if stats.Sampled > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "best %s: %.2f\n", best.ID, best.Report.FinalScore)
	}

	if err != nil && ctx.Err() != nil {
		// interrupted
		return nil
	}
	return err
}

// photoForSave returns frame with the guides drawn on it when overlays are enabled
func photoForSave(frame image.Image, ev photocoach.Evaluation) image.Image {
	if !cfg.Output.Overlay {
		return frame
	}
	return overlay.Render(frame, overlay.Options{Grid: true, Main: ev.Main, Score: &ev.Report})
}
