package vision

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

// createUniformImage creates a frame filled with a single color
func createUniformImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createHorizonImage creates a dark sky over a bright ground split at row split
func createHorizonImage(width, height, split int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y < split {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

// createCheckerboard creates a 1px black/white checkerboard
func createCheckerboard(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name   string
		color  color.RGBA
		expect uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"mid gray", color.RGBA{130, 130, 130, 255}, 130},
		{"pure red", color.RGBA{255, 0, 0, 255}, 76},
		{"pure green", color.RGBA{0, 255, 0, 255}, 150},
		{"pure blue", color.RGBA{0, 0, 255, 255}, 29},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gray := Grayscale(createUniformImage(4, 4, tc.color))
			if got := gray.GrayAt(2, 2).Y; got != tc.expect {
				t.Errorf("Expected luma %d, got %d", tc.expect, got)
			}
		})
	}
}

func TestGrayscaleOffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 30, 20))
	gray := Grayscale(img)

	bounds := gray.Bounds()
	if bounds.Min != (image.Point{}) {
		t.Errorf("Expected zero origin, got %v", bounds.Min)
	}
	if bounds.Dx() != 20 || bounds.Dy() != 10 {
		t.Errorf("Expected 20x10, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestMeanBrightness(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Pix = []uint8{0, 100, 200, 100}

	if got := MeanBrightness(img); got != 100 {
		t.Errorf("Expected mean 100, got %f", got)
	}

	empty := image.NewGray(image.Rect(0, 0, 0, 0))
	if got := MeanBrightness(empty); got != 0 {
		t.Errorf("Expected 0 for empty image, got %f", got)
	}
}

func TestLaplacianVarianceUniform(t *testing.T) {
	gray := Grayscale(createUniformImage(50, 40, color.RGBA{90, 90, 90, 255}))

	if got := LaplacianVariance(gray); got != 0 {
		t.Errorf("Expected zero variance for a solid frame, got %f", got)
	}
}

func TestLaplacianVarianceCheckerboard(t *testing.T) {
	// every pixel responds with ±1020 under reflect-101, so the variance is 1020²
	got := LaplacianVariance(createCheckerboard(20, 20))
	if math.Abs(got-1020*1020) > 1e-6 {
		t.Errorf("Expected variance %d, got %f", 1020*1020, got)
	}
}

func TestLaplacianSinglePixel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.Pix[0] = 42

	values := Laplacian(img)
	if len(values) != 1 || values[0] != 0 {
		t.Errorf("Expected single zero response, got %v", values)
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, expect int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 3},
		{6, 5, 2},
		{-1, 1, 0},
	}

	for _, tc := range tests {
		if got := reflect101(tc.i, tc.n); got != tc.expect {
			t.Errorf("reflect101(%d, %d): expected %d, got %d", tc.i, tc.n, tc.expect, got)
		}
	}
}

func TestCannyUniform(t *testing.T) {
	gray := Grayscale(createUniformImage(64, 48, color.RGBA{200, 10, 10, 255}))
	edges := Canny(gray, 50, 150)

	for _, v := range edges.Pix {
		if v != 0 {
			t.Fatal("Expected no edges on a solid frame")
		}
	}
}

func TestCannyHorizonIsSingleRow(t *testing.T) {
	gray := Grayscale(createHorizonImage(100, 100, 50))
	edges := Canny(gray, 50, 150)

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := edges.GrayAt(x, y).Y
			if y == 49 && v != EdgeValue {
				t.Fatalf("Expected edge at (%d, %d)", x, y)
			}
			if y != 49 && v != 0 {
				t.Fatalf("Unexpected edge at (%d, %d)", x, y)
			}
		}
	}
}

func TestCannyVerticalStep(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 100, 60))
	for y := 0; y < 60; y++ {
		for x := 50; x < 100; x++ {
			gray.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	edges := Canny(gray, 50, 150)
	for y := 0; y < 60; y++ {
		if edges.GrayAt(49, y).Y != EdgeValue {
			t.Errorf("Expected edge at column 49, row %d", y)
		}
		if edges.GrayAt(50, y).Y != 0 {
			t.Errorf("Expected suppressed pixel at column 50, row %d", y)
		}
	}
}

// createIsoluminantSplit puts pure red left of column split and gray of the same luma right of it
func createIsoluminantSplit(width, height, split int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < split {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{76, 76, 76, 255})
			}
		}
	}
	return img
}

func TestCannyColorFindsIsoluminantEdge(t *testing.T) {
	img := createIsoluminantSplit(100, 60, 50)

	for _, v := range Canny(Grayscale(img), 50, 150).Pix {
		if v != 0 {
			t.Fatal("Expected luma Canny to miss the red/gray boundary")
		}
	}

	edges := CannyColor(img, 50, 150)
	for y := 0; y < 60; y++ {
		if edges.GrayAt(49, y).Y != EdgeValue {
			t.Errorf("Expected edge at column 49, row %d", y)
		}
		if edges.GrayAt(50, y).Y != 0 {
			t.Errorf("Expected suppressed pixel at column 50, row %d", y)
		}
	}
}

func TestCannyColorMatchesGrayOnNeutralFrames(t *testing.T) {
	img := createHorizonImage(80, 80, 30)

	expected := Canny(Grayscale(img), 50, 150)
	got := CannyColor(img, 50, 150)
	if !bytes.Equal(expected.Pix, got.Pix) {
		t.Error("Expected identical edges for a neutral gray frame")
	}
}

func TestCannyColorUniform(t *testing.T) {
	edges := CannyColor(createUniformImage(40, 30, color.RGBA{10, 200, 90, 255}), 50, 150)
	for _, v := range edges.Pix {
		if v != 0 {
			t.Fatal("Expected no edges on a solid frame")
		}
	}
}

func TestHoughLinesHorizontal(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 200, 120))
	for x := 0; x < 200; x++ {
		edges.SetGray(x, 60, color.Gray{Y: EdgeValue})
	}

	lines := HoughLines(edges, 1, math.Pi/180, 100)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}

	if math.Abs(lines[0].Degrees()-90) > 1e-9 {
		t.Errorf("Expected 90°, got %f", lines[0].Degrees())
	}
	if math.Abs(lines[0].Rho-60) > 1e-9 {
		t.Errorf("Expected rho 60, got %f", lines[0].Rho)
	}
	if lines[0].Votes != 200 {
		t.Errorf("Expected 200 votes, got %d", lines[0].Votes)
	}
}

func TestHoughLinesVertical(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 120, 200))
	for y := 0; y < 200; y++ {
		edges.SetGray(30, y, color.Gray{Y: EdgeValue})
	}

	lines := HoughLines(edges, 1, math.Pi/180, 100)
	if len(lines) == 0 {
		t.Fatal("Expected at least one line")
	}
	if lines[0].Theta != 0 {
		t.Errorf("Expected theta 0 for a vertical line, got %f", lines[0].Theta)
	}
	if math.Abs(lines[0].Rho-30) > 1e-9 {
		t.Errorf("Expected rho 30, got %f", lines[0].Rho)
	}
}

func TestHoughLinesBelowThreshold(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 200, 200))
	for x := 0; x < 50; x++ {
		edges.SetGray(x, 10, color.Gray{Y: EdgeValue})
	}

	if lines := HoughLines(edges, 1, math.Pi/180, 100); len(lines) != 0 {
		t.Errorf("Expected no lines, got %d", len(lines))
	}
}

func BenchmarkCanny(b *testing.B) {
	gray := Grayscale(createHorizonImage(640, 480, 240))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Canny(gray, 50, 150)
	}
}

func BenchmarkLaplacianVariance(b *testing.B) {
	gray := createCheckerboard(640, 480)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LaplacianVariance(gray)
	}
}
