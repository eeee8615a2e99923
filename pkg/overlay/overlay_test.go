package overlay

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/menta2k/photo-coach/pkg/types"
)

func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return img
}

func isColor(img image.Image, x, y int, c color.NRGBA) bool {
	return color.NRGBAModel.Convert(img.At(x, y)) == c
}

func TestDrawGrid(t *testing.T) {
	frame := createTestImage(300, 150)
	out := Render(frame, Options{Grid: true})

	for _, x := range []int{99, 100, 199, 200} {
		if !isColor(out, x, 75, GridColor) {
			t.Errorf("Expected grid line at x=%d", x)
		}
	}
	for _, y := range []int{49, 50, 99, 100} {
		if !isColor(out, 20, y, GridColor) {
			t.Errorf("Expected grid line at y=%d", y)
		}
	}
	if isColor(out, 20, 20, GridColor) {
		t.Error("Did not expect grid colour away from the lines")
	}
}

func TestRenderDoesNotMutateFrame(t *testing.T) {
	frame := createTestImage(90, 90)
	before := append([]uint8(nil), frame.Pix...)

	obj := types.DetectedObject{Label: "cat", Confidence: 0.5, BBox: image.Rect(10, 30, 60, 80)}
	report := types.ScoreReport{FinalScore: 5}
	Render(frame, Options{Grid: true, Main: &obj, Score: &report})

	if !reflect.DeepEqual(before, frame.Pix) {
		t.Error("Render modified the input frame")
	}
}

func TestDrawObject(t *testing.T) {
	frame := createTestImage(100, 100)
	obj := types.DetectedObject{Label: "dog", Confidence: 0.87, BBox: image.Rect(20, 40, 80, 90)}

	out := Render(frame, Options{Main: &obj})

	corners := [][2]int{{20, 40}, {79, 40}, {20, 89}, {79, 89}, {21, 41}}
	for _, p := range corners {
		if !isColor(out, p[0], p[1], BoxColor) {
			t.Errorf("Expected box stroke at %v", p)
		}
	}
	if isColor(out, 50, 65, BoxColor) {
		t.Error("Expected box interior to stay untouched")
	}
}

func TestRenderOffsetFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(100, 100, 200, 200))
	obj := types.DetectedObject{Label: "cup", Confidence: 0.3, BBox: image.Rect(110, 150, 150, 190)}

	out := Render(frame, Options{Main: &obj})

	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("Expected zero-origin output, got %v", out.Bounds())
	}
	if !isColor(out, 10, 50, BoxColor) {
		t.Error("Expected box rebased to the output origin")
	}
}

func TestLabel(t *testing.T) {
	obj := types.DetectedObject{Label: "person", Confidence: 0.8666}
	if got := Label(obj); got != "person (0.87)" {
		t.Errorf("Expected %q, got %q", "person (0.87)", got)
	}
}

func TestDrawTextStaysInFrame(t *testing.T) {
	frame := createTestImage(120, 40)
	out := Render(frame, Options{})

	// label above a box touching the top edge is pushed down into view
	DrawText(out, 0, -20, "edge", BoxColor)

	found := false
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isColor(out, x, y, BoxColor) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("Expected text pixels inside the frame")
	}
}
