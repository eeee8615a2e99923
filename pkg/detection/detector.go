package detection

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/menta2k/photo-coach/pkg/client"
	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/processing"
	"github.com/menta2k/photo-coach/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt is the default prompt for object listing
const DefaultPrompt = `You are an object locator for a camera viewfinder.

Return JSON only:
{
  "objects": [
    {
      "label": "string",
      "confidence": 0.0,
      "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
    }
  ],
  "description": "short neutral sentence (≤ 20 words)"
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- List every clearly visible object (people, animals, vehicles, furniture, food, plants), at most 10.
- Each box should tightly include its object.
- Labels: lowercase common nouns, singular.
- Confidence is your certainty in [0,1].
- If nothing is recognisable, return {"objects":[],"description":"empty scene"}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// MaxObjects caps the number of objects kept from one reply
const MaxObjects = 10

// Config controls how frames are sent to the vision model
type Config struct {
	Model       string
	Prompt      string
	MaxDim      int // longest side sent to the model, 0 keeps the original size
	JPEGQuality int
}

// DefaultConfig returns the settings used by NewDetector
func DefaultConfig(model string) Config {
	return Config{
		Model:       model,
		Prompt:      DefaultPrompt,
		MaxDim:      1024,
		JPEGQuality: 85,
	}
}

// Detector locates objects in frames using a vision language model
type Detector struct {
	client    client.VisionClient
	config    Config
	processor *processing.Processor
}

var _ locator.Locator = (*Detector)(nil)

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient, model string) *Detector {
	return NewDetectorWithConfig(client, DefaultConfig(model))
}

// NewDetectorWithConfig creates a detector with custom settings
func NewDetectorWithConfig(client client.VisionClient, cfg Config) *Detector {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 85
	}
	return &Detector{
		client:    client,
		config:    cfg,
		processor: processing.NewProcessor(),
	}
}

// Locate sends the frame to the model and converts its reply to pixel boxes
func (d *Detector) Locate(ctx context.Context, frame image.Image) ([]types.DetectedObject, error) {
	if err := d.processor.ValidateFrame(frame); err != nil {
		return nil, err
	}

	imgB64, err := d.processor.PrepareImageForModel(frame, "jpg", d.config.MaxDim, d.config.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	result, err := d.client.ListObjects(ctx, d.config.Model, d.config.Prompt, imgB64)
	if err != nil {
		return nil, fmt.Errorf("vision model %s: %w", d.config.Model, err)
	}

	return toDetections(validateResult(result), frame.Bounds()), nil
}

// TestVision asks the model to describe frame in plain text. A reply that
// has nothing to do with the frame means the model is not receiving images.
func (d *Detector) TestVision(ctx context.Context, frame image.Image) (string, error) {
	if err := d.processor.ValidateFrame(frame); err != nil {
		return "", err
	}

	imgB64, err := d.processor.PrepareImageForModel(frame, "jpg", d.config.MaxDim, d.config.JPEGQuality)
	if err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}

	reply, err := d.client.SimpleQuery(ctx, d.config.Model, SimpleTestPrompt, imgB64)
	if err != nil {
		return "", fmt.Errorf("vision model %s: %w", d.config.Model, err)
	}
	return strings.TrimSpace(reply), nil
}

// fallbackLabels mark placeholder objects some models emit instead of an empty list
var fallbackLabels = []string{"none", "unclear", "unknown", "fallback", "generic", "background"}

// validateResult drops placeholder and degenerate objects and normalizes the rest
func validateResult(result *types.VisionResult) []types.VisionObject {
	if result == nil {
		return nil
	}

	out := make([]types.VisionObject, 0, len(result.Objects))
	for _, obj := range result.Objects {
		obj.Label = strings.ToLower(strings.TrimSpace(obj.Label))
		if obj.Label == "" || isFallbackLabel(obj.Label) {
			continue
		}

		obj.Confidence = clamp(obj.Confidence, 0, 1)
		obj.Box = normalizeBox(obj.Box)
		if obj.Box.W <= 0 || obj.Box.H <= 0 {
			continue
		}

		out = append(out, obj)
		if len(out) == MaxObjects {
			break
		}
	}
	return out
}

func isFallbackLabel(label string) bool {
	for _, f := range fallbackLabels {
		if strings.Contains(label, f) {
			return true
		}
	}
	return false
}

// toDetections converts normalized boxes to pixel rectangles inside bounds
func toDetections(objects []types.VisionObject, bounds image.Rectangle) []types.DetectedObject {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	out := make([]types.DetectedObject, 0, len(objects))
	for _, obj := range objects {
		rect := image.Rect(
			bounds.Min.X+int(math.Round(obj.Box.X*w)),
			bounds.Min.Y+int(math.Round(obj.Box.Y*h)),
			bounds.Min.X+int(math.Round((obj.Box.X+obj.Box.W)*w)),
			bounds.Min.Y+int(math.Round((obj.Box.Y+obj.Box.H)*h)),
		).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		out = append(out, types.DetectedObject{
			Label:      obj.Label,
			Confidence: obj.Confidence,
			BBox:       rect,
		})
	}
	return out
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox keeps the box inside the unit square
func normalizeBox(b types.Box) types.Box {
	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.W, 0, 1-x),
		H: clamp(b.H, 0, 1-y),
	}
}
