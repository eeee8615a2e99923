package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// EdgeValue marks an edge pixel in the map returned by Canny
const EdgeValue = 255

// tan(22.5°) in 15-bit fixed point, used to bucket gradient directions
const (
	cannyShift = 15
	tg22       = 13573
)

// Canny runs Canny edge detection on a grayscale image: 3x3 Sobel gradients
// (replicated border), L1 magnitude, non-maximum suppression along four
// directions and hysteresis between the low and high thresholds.
// Edge pixels are EdgeValue, everything else is 0.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	g := newGradients(width, height)
	if width == 0 || height == 0 {
		return image.NewGray(image.Rect(0, 0, width, height))
	}

	g.add(func(x, y int) int {
		return int(gray.Pix[replicate(y, height)*gray.Stride+replicate(x, width)])
	})
	return g.edges(low, high)
}

// CannyColor runs Canny on a colour frame. Gradients are taken per channel
// and each pixel keeps the channel with the largest magnitude, so edges
// between colours of equal luma survive. Ties go to blue, then green.
func CannyColor(img image.Image, low, high float64) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return Canny(gray, low, high)
	}

	src := imaging.Clone(img)
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	g := newGradients(width, height)
	if width == 0 || height == 0 {
		return image.NewGray(image.Rect(0, 0, width, height))
	}

	for _, ch := range []int{2, 1, 0} {
		g.add(func(x, y int) int {
			return int(src.Pix[replicate(y, height)*src.Stride+replicate(x, width)*4+ch])
		})
	}
	return g.edges(low, high)
}

// gradients holds per-pixel Sobel derivatives and their L1 magnitude
type gradients struct {
	width, height int
	dx, dy, mag   []int
	seen          bool
}

func newGradients(width, height int) *gradients {
	n := width * height
	return &gradients{
		width:  width,
		height: height,
		dx:     make([]int, n),
		dy:     make([]int, n),
		mag:    make([]int, n),
	}
}

// add computes Sobel gradients for one channel and keeps them wherever their
// magnitude beats what earlier channels produced.
func (g *gradients) add(px func(x, y int) int) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			gx := (px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1)) -
				(px(x-1, y-1) + 2*px(x-1, y) + px(x-1, y+1))
			gy := (px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)) -
				(px(x-1, y-1) + 2*px(x, y-1) + px(x+1, y-1))
			m := abs(gx) + abs(gy)
			i := y*g.width + x
			if g.seen && m <= g.mag[i] {
				continue
			}
			g.dx[i] = gx
			g.dy[i] = gy
			g.mag[i] = m
		}
	}
	g.seen = true
}

// edges applies non-maximum suppression and hysteresis to the gradients
func (g *gradients) edges(low, high float64) *image.Gray {
	width, height := g.width, g.height
	dx, dy, mag := g.dx, g.dy, g.mag
	edges := image.NewGray(image.Rect(0, 0, width, height))

	if low > high {
		low, high = high, low
	}
	lowT := int(math.Floor(low))
	highT := int(math.Floor(high))

	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return mag[y*width+x]
	}

	// 0: not an edge, 1: weak candidate, 2: strong edge
	state := make([]uint8, width*height)
	var stack []int

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := mag[i]
			if m <= lowT {
				continue
			}

			xs := abs(dx[i])
			ys := abs(dy[i]) << cannyShift
			tg22x := xs * tg22

			var isMax bool
			switch {
			case ys < tg22x:
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ys > tg22x+(xs<<(cannyShift+1)):
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (dx[i] < 0) != (dy[i] < 0) {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}

			if !isMax {
				continue
			}
			if m > highT {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		edges.Pix[(i/width)*edges.Stride+i%width] = EdgeValue

		x, y := i%width, i/width
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}

	return edges
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
