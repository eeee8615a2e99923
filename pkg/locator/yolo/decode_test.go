package yolo

import (
	"image"
	"testing"
)

// tensor builds a channel-major output with the given anchors.
// Each anchor is cx, cy, w, h followed by class scores.
func tensor(classes int, anchors ...[]float32) []float32 {
	attrs := 4 + classes
	data := make([]float32, attrs*len(anchors))
	for i, a := range anchors {
		for c, v := range a {
			data[c*len(anchors)+i] = v
		}
	}
	return data
}

func TestDecode(t *testing.T) {
	cfg := DefaultConfig()
	data := tensor(3,
		[]float32{320, 320, 64, 128, 0.1, 0.9, 0.2}, // class 1, kept
		[]float32{100, 100, 10, 10, 0.3, 0.2, 0.1},   // below threshold
		[]float32{600, 40, 80, 80, 0.7, 0.0, 0.6},    // class 0, kept
	)

	cands := decode(data, 7, 3, cfg, 1280, 640)
	if len(cands) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(cands))
	}

	if cands[0].class != 1 || cands[0].score != 0.9 {
		t.Errorf("Expected class 1 @ 0.9, got %d @ %v", cands[0].class, cands[0].score)
	}
	// x doubles (1280/640), y stays
	if cands[0].box != image.Rect(576, 256, 704, 384) {
		t.Errorf("Unexpected scaled box %v", cands[0].box)
	}

	if cands[1].class != 0 {
		t.Errorf("Expected class 0, got %d", cands[1].class)
	}
}

func TestDecodeRejectsShortTensor(t *testing.T) {
	if got := decode(make([]float32, 10), 84, 8400, DefaultConfig(), 640, 640); got != nil {
		t.Errorf("Expected nil for short tensor, got %d candidates", len(got))
	}
}

func TestClassName(t *testing.T) {
	if len(COCOClasses) != 80 {
		t.Errorf("Expected 80 COCO classes, got %d", len(COCOClasses))
	}
	if got := ClassName(0); got != "person" {
		t.Errorf("Expected person, got %q", got)
	}
	if got := ClassName(16); got != "dog" {
		t.Errorf("Expected dog, got %q", got)
	}
	if got := ClassName(99); got != "class_99" {
		t.Errorf("Expected class_99, got %q", got)
	}
}
