package main

import (
	"context"
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/overlay"
	"github.com/menta2k/photo-coach/pkg/processing"
)

// visionChecker is implemented by locators backed by a vision model
type visionChecker interface {
	TestVision(ctx context.Context, frame image.Image) (string, error)
}

var checkCmd = &cobra.Command{
	Use:   "check <image|url>",
	Short: "Run the configured locator on one image and show what it finds",
	Long: `Loads the configured locator backend and runs it on a single image.
Vision model backends are first asked to describe the image in plain text,
which shows whether the model receives images at all. Nothing is scored or logged.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	frame, err := processing.NewProcessor().LoadImageSmart(args[0])
	if err != nil {
		return err
	}

	loc, closeLoc, err := buildLocator(cfg.Locator)
	if err != nil {
		return err
	}
	if closeLoc != nil {
		defer closeLoc()
	}

	fmt.Fprintf(out, "backend: %s\n", cfg.Locator.Backend)

	if vc, ok := loc.(visionChecker); ok {
		reply, err := vc.TestVision(ctx, frame)
		if err != nil {
			return fmt.Errorf("vision check failed: %w", err)
		}
		fmt.Fprintf(out, "model sees: %s\n", reply)
	}

	objects, err := loc.Locate(ctx, frame)
	if err != nil {
		return fmt.Errorf("locate failed: %w", err)
	}

	fmt.Fprintf(out, "%d objects\n", len(objects))
	for _, obj := range objects {
		fmt.Fprintf(out, "  %s at %v\n", overlay.Label(obj), obj.BBox)
	}
	if main, ok := locator.MainObject(objects); ok {
		fmt.Fprintf(out, "main subject: %s\n", overlay.Label(main))
	}
	return nil
}
