package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DatabaseEnv names the environment variable holding the score database URL
const DatabaseEnv = "PHOTO_COACH_DB"

// Config holds the application configuration
type Config struct {
	Scoring ScoringConfig `json:"scoring"`
	Locator LocatorConfig `json:"locator"`
	Log     LogConfig     `json:"log"`
	Output  OutputConfig  `json:"output"`
	Server  ServerConfig  `json:"server"`
}

// ScoringConfig holds the edge and line detection parameters
type ScoringConfig struct {
	CannyLow       float64 `json:"canny_low"`
	CannyHigh      float64 `json:"canny_high"`
	HoughThreshold int     `json:"hough_threshold"`
}

// LocatorConfig selects and tunes the object locator backend
type LocatorConfig struct {
	Backend          string  `json:"backend"` // yolo | ollama | llamacpp | none
	ModelPath        string  `json:"model_path"`
	ConfidenceThresh float64 `json:"confidence_threshold"`
	NMSThresh        float64 `json:"nms_threshold"`
	URL              string  `json:"url"`
	Model            string  `json:"model"`
	SendSize         int     `json:"send_size"`
	SendQuality      int     `json:"send_quality"`
}

// LogConfig holds score log destinations
type LogConfig struct {
	CSVPath     string `json:"csv_path"`
	DatabaseURL string `json:"database_url"`
	Level       string `json:"level"`
}

// OutputConfig holds configuration for saved photos and overlays
type OutputConfig struct {
	PhotoDir    string `json:"photo_dir"`
	Overlay     bool   `json:"overlay"`
	Format      string `json:"format"` // overlay and crop files written by score
	JPEGQuality int    `json:"jpeg_quality"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr         string `json:"addr"`
	MaxBodyBytes int    `json:"max_body_bytes"`
}

// Backends lists the supported locator backends
var Backends = []string{"yolo", "ollama", "llamacpp", "none"}

// Formats lists the supported output image formats
var Formats = []string{"jpg", "png", "webp"}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			CannyLow:       50,
			CannyHigh:      150,
			HoughThreshold: 100,
		},
		Locator: LocatorConfig{
			Backend:          "yolo",
			ModelPath:        "models/yolov8n.onnx",
			ConfidenceThresh: 0.5,
			NMSThresh:        0.45,
			Model:            "openbmb/minicpm-v4.5",
			SendSize:         1024,
			SendQuality:      85,
		},
		Log: LogConfig{
			CSVPath: "photo_scores.csv",
			Level:   "info",
		},
		Output: OutputConfig{
			PhotoDir:    "captured_photos",
			Overlay:     true,
			Format:      "jpg",
			JPEGQuality: 90,
		},
		Server: ServerConfig{
			Addr:         ":8088",
			MaxBodyBytes: 20 * 1024 * 1024,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename when it exists and falls back to defaults otherwise.
// The database URL is taken from the environment when the file leaves it empty.
func Load(filename string) (*Config, error) {
	config := Default()
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if config, err = LoadFromFile(filename); err != nil {
				return nil, err
			}
		}
	}

	if config.Log.DatabaseURL == "" {
		config.Log.DatabaseURL = os.Getenv(DatabaseEnv)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Scoring.CannyLow <= 0 || c.Scoring.CannyHigh <= c.Scoring.CannyLow {
		return fmt.Errorf("scoring.canny_low must be positive and below scoring.canny_high")
	}

	if c.Scoring.HoughThreshold < 1 {
		return fmt.Errorf("scoring.hough_threshold must be positive")
	}

	if !oneOf(c.Locator.Backend, Backends) {
		return fmt.Errorf("locator.backend must be one of %s", strings.Join(Backends, ", "))
	}

	if c.Locator.ConfidenceThresh < 0 || c.Locator.ConfidenceThresh > 1 {
		return fmt.Errorf("locator.confidence_threshold must be between 0 and 1")
	}

	if c.Locator.NMSThresh < 0 || c.Locator.NMSThresh > 1 {
		return fmt.Errorf("locator.nms_threshold must be between 0 and 1")
	}

	if c.Locator.SendQuality < 1 || c.Locator.SendQuality > 100 {
		return fmt.Errorf("locator.send_quality must be between 1 and 100")
	}

	if !oneOf(c.Output.Format, Formats) {
		return fmt.Errorf("output.format must be one of %s", strings.Join(Formats, ", "))
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}

	if c.Log.CSVPath == "" && c.Log.DatabaseURL == "" {
		return fmt.Errorf("log.csv_path or log.database_url must be set")
	}

	return nil
}

func oneOf(name string, names []string) bool {
	for _, b := range names {
		if name == b {
			return true
		}
	}
	return false
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "photo-coach", "config.json")
}
