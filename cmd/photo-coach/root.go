package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	photocoach "github.com/menta2k/photo-coach"
	"github.com/menta2k/photo-coach/internal/config"
	"github.com/menta2k/photo-coach/internal/log"
)

// rootOptions are the flags shared by every subcommand. Non-empty values
// override the config file.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	Backend    string
	Model      string
	ModelPath  string
	URL        string
	CSVPath    string
	DBURL      string
}

var (
	rootOpts rootOptions
	// cfg is the resolved configuration, set before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "photo-coach",
	Short:         "Score photos for composition, angle, lighting and focus",
	Version:       photocoach.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(rootOpts.ConfigPath)
		if err != nil {
			return err
		}
		applyOverrides(c, rootOpts)
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log.Init(c.Log.Level)
		cfg = c
		return nil
	},
}

func applyOverrides(c *config.Config, o rootOptions) {
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.Backend != "" {
		c.Locator.Backend = o.Backend
	}
	if o.Model != "" {
		c.Locator.Model = o.Model
	}
	if o.ModelPath != "" {
		c.Locator.ModelPath = o.ModelPath
	}
	if o.URL != "" {
		c.Locator.URL = o.URL
	}
	if o.CSVPath != "" {
		c.Log.CSVPath = o.CSVPath
	}
	if o.DBURL != "" {
		c.Log.DatabaseURL = o.DBURL
	}
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootOpts.ConfigPath, "config", config.GetConfigPath(), "path to the JSON config file")
	f.StringVar(&rootOpts.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	f.StringVar(&rootOpts.Backend, "backend", "", "object locator: yolo|ollama|llamacpp|none")
	f.StringVar(&rootOpts.Model, "model", "", "vision model name for ollama/llamacpp")
	f.StringVar(&rootOpts.ModelPath, "model-path", "", "YOLO ONNX model path")
	f.StringVar(&rootOpts.URL, "url", "", "vision server URL (defaults: ollama=http://localhost:11435/api/chat, llamacpp=http://localhost:8080)")
	f.StringVar(&rootOpts.CSVPath, "csv", "", "score log CSV path")
	f.StringVar(&rootOpts.DBURL, "db", "", "PostgreSQL connection string for the score log (env "+config.DatabaseEnv+")")
}
