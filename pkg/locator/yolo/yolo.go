// Package yolo locates COCO objects in frames with a YOLOv8 ONNX model run
// through OpenCV's dnn module.
package yolo

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/menta2k/photo-coach/internal/log"
	"github.com/menta2k/photo-coach/pkg/locator"
	"github.com/menta2k/photo-coach/pkg/types"
	"gocv.io/x/gocv"
)

// Config holds YOLO detector configuration
type Config struct {
	ModelPath        string
	ConfidenceThresh float32
	NMSThresh        float32
	InputWidth       int
	InputHeight      int
}

// DefaultConfig returns production defaults for YOLOv8n
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}

// Model is a loaded network. Forward passes are serialized.
type Model struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex
}

// Load reads an ONNX model from disk
func Load(cfg Config) (*Model, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s: %w", cfg.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	log.Info("yolo model loaded", "path", cfg.ModelPath)
	return &Model{net: net, config: cfg}, nil
}

var (
	sharedOnce  sync.Once
	sharedModel *Model
	sharedErr   error
)

// Shared loads the model once per process and hands out the same instance
// on every call. Later calls ignore cfg. The shared model is never closed.
func Shared(cfg Config) (*Model, error) {
	sharedOnce.Do(func() {
		sharedModel, sharedErr = Load(cfg)
	})
	return sharedModel, sharedErr
}

// Close releases the network
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}

// Locator adapts a Model to the locator interface
type Locator struct {
	model *Model
}

var _ locator.Locator = (*Locator)(nil)

// NewLocator creates a locator backed by model
func NewLocator(model *Model) *Locator {
	return &Locator{model: model}
}

// Locate runs one forward pass and returns NMS-filtered detections in frame pixels
func (l *Locator) Locate(ctx context.Context, frame image.Image) ([]types.DetectedObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := frame.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	img, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer img.Close()

	cfg := l.model.config
	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(cfg.InputWidth, cfg.InputHeight), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	l.model.mu.Lock()
	l.model.net.SetInput(blob, "")
	output := l.model.net.Forward("")
	l.model.mu.Unlock()
	defer output.Close()

	// YOLOv8 output is [1, 4+classes, anchors]
	dims := output.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, fmt.Errorf("unexpected YOLO output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	cands := decode(data, dims[1], dims[2], cfg, bounds.Dx(), bounds.Dy())
	if len(cands) == 0 {
		return []types.DetectedObject{}, nil
	}

	boxes := make([]image.Rectangle, len(cands))
	scores := make([]float32, len(cands))
	for i, c := range cands {
		boxes[i] = c.box
		scores[i] = c.score
	}
	keep := gocv.NMSBoxes(boxes, scores, cfg.ConfidenceThresh, cfg.NMSThresh)

	objects := make([]types.DetectedObject, 0, len(keep))
	for _, idx := range keep {
		c := cands[idx]
		rect := c.box.Add(bounds.Min).Intersect(bounds)
		if rect.Empty() {
			continue
		}
		objects = append(objects, types.DetectedObject{
			Label:      ClassName(c.class),
			Confidence: float64(c.score),
			BBox:       rect,
		})
	}

	if len(objects) > 0 {
		log.Debug("yolo located objects", "count", len(objects))
	}
	return objects, nil
}
